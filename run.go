package ssrwatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/ssrwatch/date"
	"github.com/google/uuid"
)

// Run is the per-invocation context: identity, date and scratch directory.
// It is built once by NewRun and never modified; Close removes its scratch
// directory and must be deferred by the caller.
type Run struct {
	id      string
	day     date.Date
	workDir string
	tempDir string
}

// NewRun creates workDir if needed and a fresh scratch directory inside it.
func NewRun(workDir string, day date.Date) (*Run, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create work directory: %w", ErrEnvironment, err)
	}
	tmp, err := os.MkdirTemp(workDir, "run-")
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create run directory: %w", ErrEnvironment, err)
	}
	return &Run{
		id:      uuid.NewString(),
		day:     day,
		workDir: workDir,
		tempDir: tmp,
	}, nil
}

// ID identifies the run in logs and mail headers.
func (r *Run) ID() string { return r.id }

// Date is the day whose list is checked.
func (r *Run) Date() date.Date { return r.day }

// WorkDir is the long-lived working directory.
func (r *Run) WorkDir() string { return r.workDir }

// TempDir is the scratch directory removed by Close.
func (r *Run) TempDir() string { return r.tempDir }

// ListPath is where the downloaded list is saved.
func (r *Run) ListPath() string { return filepath.Join(r.tempDir, ListFileName(r.day)) }

// MatchPath is where the match set is saved.
func (r *Run) MatchPath() string { return filepath.Join(r.tempDir, MatchFileName(r.day)) }

// Close removes the scratch directory.
func (r *Run) Close() error {
	if err := os.RemoveAll(r.tempDir); err != nil {
		return fmt.Errorf("cannot remove run directory: %w", err)
	}
	return nil
}

// ListFileName is the remote file name of the list published for day.
func ListFileName(day date.Date) string { return "shorthalts" + day.Compact() + ".txt" }

// MatchFileName is the name of the attachment holding the matches for day.
func MatchFileName(day date.Date) string { return "ssr_matches_" + day.Compact() + ".txt" }
