package domain

import "time"

// ChunkID is the position of a chunk in both the vector store and the
// metadata store. Entry i of each store carries ChunkID(i).
type ChunkID int

// Record is one metadata entry of a persisted index.
type Record struct {
	ID ChunkID `json:"id"`
	Chunk
}

// DocumentStatus is the result of indexing a single PDF.
type DocumentStatus string

// Document statuses.
const (
	// DocumentIndexed means chunks were added for the document.
	DocumentIndexed DocumentStatus = "indexed"

	// DocumentSkipped means the document was already in the index.
	DocumentSkipped DocumentStatus = "skipped"

	// DocumentNoHeadings means no sections were found, so nothing was added.
	DocumentNoHeadings DocumentStatus = "no_headings"

	// DocumentFailed means the PDF could not be read.
	DocumentFailed DocumentStatus = "failed"
)

// DocumentOutcome records what happened to one PDF during a run.
type DocumentOutcome struct {
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
	Title    string         `json:"title,omitempty"`
	Chunks   int            `json:"chunks"`
	Error    string         `json:"error,omitempty"`
}

// IndexReport summarises one indexing call.
type IndexReport struct {
	RunID      string            `json:"run_id"`
	Identity   string            `json:"identity"`
	Folder     string            `json:"folder"`
	Added      int               `json:"added"`
	Documents  []DocumentOutcome `json:"documents"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Count returns how many documents ended with the given status.
func (r *IndexReport) Count(status DocumentStatus) int {
	n := 0
	for i := range r.Documents {
		if r.Documents[i].Status == status {
			n++
		}
	}
	return n
}

// RunStatus is the lifecycle state of a ledger entry.
type RunStatus string

// Run statuses.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// IndexRun is the ledger entry for one indexing call.
type IndexRun struct {
	ID         string     `json:"id"`
	Identity   string     `json:"identity"`
	Folder     string     `json:"folder"`
	Status     RunStatus  `json:"status"`
	Added      int        `json:"added"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
