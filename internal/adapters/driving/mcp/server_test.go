package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresSearch(t *testing.T) {
	server, err := NewServer(&Ports{Index: &mockIndexService{}})
	assert.Nil(t, server)
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestNewServer_DefaultIdentity(t *testing.T) {
	ports := &Ports{Search: &mockSearchService{}}

	server, err := NewServer(ports)
	require.NoError(t, err)
	assert.Equal(t, "default", server.ports.DefaultIdentity)
	assert.Empty(t, ports.DefaultIdentity, "caller's ports untouched")
	assert.NotNil(t, server.Handler())

	server, err = NewServer(&Ports{Search: &mockSearchService{}, DefaultIdentity: "manuals"})
	require.NoError(t, err)
	assert.Equal(t, "manuals", server.ports.DefaultIdentity)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports Ports
		err   error
	}{
		{"empty", Ports{}, ErrMissingSearchService},
		{"search only", Ports{Search: &mockSearchService{}}, nil},
		{"everything", Ports{
			Search:  &mockSearchService{},
			Index:   &mockIndexService{},
			Outline: &mockOutlineService{},
			Runs:    &mockRunService{},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ports.Validate(), tt.err)
		})
	}
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
