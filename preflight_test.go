package ssrwatch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lookPathIn(known ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, k := range known {
			if k == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func writeStocks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocks.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPreflight(t *testing.T) {
	testCases := []struct {
		name     string
		uid      int
		required []string
		stocks   string
		wantErr  string
	}{
		{
			name:     "ok",
			uid:      1000,
			required: []string{"sendmail"},
			stocks:   "AAPL\nMSFT\n",
		},
		{
			name:    "root",
			uid:     0,
			stocks:  "AAPL\n",
			wantErr: "refusing to run as root",
		},
		{
			name:     "missing commands",
			uid:      1000,
			required: []string{"sendmail", "mutt", "msmtp"},
			stocks:   "AAPL\n",
			wantErr:  `required command "msmtp" not found`,
		},
		{
			name:    "empty file",
			uid:     1000,
			stocks:  "",
			wantErr: "is empty",
		},
		{
			name:    "comments only",
			uid:     1000,
			stocks:  "# AAPL\n\n",
			wantErr: "no ticker found",
		},
		{
			name:    "invalid ticker",
			uid:     1000,
			stocks:  "AAPL\naapl\n",
			wantErr: "invalid ticker",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := PreflightInput{
				UID:              tc.uid,
				RequiredCommands: tc.required,
				StocksPath:       writeStocks(t, tc.stocks),
				LookPath:         lookPathIn("sendmail"),
			}
			positions, err := Preflight(in)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Preflight() unexpected error = %v", err)
				}
				if len(positions) == 0 {
					t.Error("Preflight() returned no positions")
				}
				return
			}
			if err == nil {
				t.Fatal("Preflight() expected an error")
			}
			if !errors.Is(err, ErrEnvironment) {
				t.Errorf("Preflight() error = %v, want ErrEnvironment", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Preflight() error = %q, want to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestPreflightMissingFileCreatesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "stocks.txt")
	in := PreflightInput{UID: 1000, StocksPath: path, LookPath: lookPathIn()}

	_, err := Preflight(in)
	if err == nil || !strings.Contains(err.Error(), "a template was created") {
		t.Fatalf("Preflight() error = %v, want template notice", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not created: %v", err)
	}

	// a second run with the untouched template succeeds.
	positions, err := Preflight(in)
	if err != nil {
		t.Fatalf("Preflight() second run unexpected error = %v", err)
	}
	if len(positions) != 3 {
		t.Errorf("Preflight() = %v, want the 3 template tickers", positions)
	}
}

func TestPreflightRootBeforeAnythingElse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.txt")
	_, err := Preflight(PreflightInput{UID: 0, StocksPath: path, LookPath: lookPathIn()})
	if err == nil {
		t.Fatal("Preflight() expected an error for root")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Preflight() as root must not create files")
	}
}
