package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// uploadField is the multipart field carrying PDFs.
const uploadField = "pdfs"

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Saved   []string            `json:"saved"`
	Skipped []string            `json:"skipped"`
	Report  *domain.IndexReport `json:"report"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.ports.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("session created", "session", session.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.ports.Sessions.Destroy(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("session destroyed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload saves the uploaded PDFs into the session folder and
// indexes the folder. Files whose names already exist are left alone.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
				http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		jsonError(w, fmt.Sprintf("no files in field %q", uploadField), http.StatusBadRequest)
		return
	}

	// Reject the whole upload before anything lands in the session folder.
	names := make([]string, len(headers))
	for i, header := range headers {
		names[i] = sanitizeFilename(header.Filename)
		if !strings.EqualFold(filepath.Ext(names[i]), ".pdf") {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", header.Filename), http.StatusBadRequest)
			return
		}
	}

	resp := UploadResponse{Saved: []string{}, Skipped: []string{}}
	for i, header := range headers {
		name := names[i]
		saved, err := saveUpload(header, filepath.Join(session.Folder, name))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if saved {
			resp.Saved = append(resp.Saved, name)
		} else {
			resp.Skipped = append(resp.Skipped, name)
		}
	}

	report, err := s.ports.Index.Index(r.Context(), session.Folder, session.Identity, driving.IndexOptions{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.Report = report

	s.log.Info("documents indexed", "session", session.ID,
		"saved", len(resp.Saved), "skipped", len(resp.Skipped), "chunks", report.Added)
	writeJSON(w, http.StatusOK, resp)
}

// saveUpload writes the part to dest unless dest already exists.
// It reports whether the file was written.
func saveUpload(header *multipart.FileHeader, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	}

	src, err := header.Open()
	if err != nil {
		return false, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return false, fmt.Errorf("save %s: %w", header.Filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return false, fmt.Errorf("save %s: %w", header.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("save %s: %w", header.Filename, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return false, fmt.Errorf("save %s: %w", header.Filename, err)
	}
	return true, nil
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send full paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		name = "unnamed"
	}
	return name
}
