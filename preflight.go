package ssrwatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
)

// PreflightInput gathers what Preflight checks.
type PreflightInput struct {
	UID              int      // effective user id
	RequiredCommands []string // external commands that must be on PATH
	StocksPath       string   // positions file
	// LookPath resolves commands, exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// Preflight verifies the environment before any network or mail activity
// and returns the validated positions.
//
// A missing positions file is replaced by a template so that the next run
// succeeds once the user edited it; the current run still fails.
func Preflight(in PreflightInput) (Positions, error) {
	if in.UID == 0 {
		return nil, fmt.Errorf("%w: refusing to run as root", ErrEnvironment)
	}

	lookPath := in.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing error
	for _, name := range in.RequiredCommands {
		if _, err := lookPath(name); err != nil {
			missing = errors.Join(missing, fmt.Errorf("required command %q not found: %w", name, err))
		}
	}
	if missing != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, missing)
	}

	info, err := os.Stat(in.StocksPath)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := WritePositionsTemplate(in.StocksPath); werr != nil {
			return nil, fmt.Errorf("%w: positions file %q does not exist: %w", ErrEnvironment, in.StocksPath, werr)
		}
		return nil, fmt.Errorf("%w: positions file %q did not exist, a template was created: edit it and run again", ErrEnvironment, in.StocksPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: positions file %q is a directory", ErrEnvironment, in.StocksPath)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: positions file %q is empty", ErrEnvironment, in.StocksPath)
	}
	return LoadPositions(in.StocksPath)
}
