package ssrwatch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidTicker(t *testing.T) {
	testCases := []struct {
		in   string
		want bool
	}{
		{"AAPL", true},
		{"BRK.B", true},
		{"BF-B", true},
		{"A1", true},
		{"aapl", false},
		{"AAPL MSFT", false},
		{"AAPL,", false},
		{"", false},
		{"ÄBC", false},
	}
	for _, tc := range testCases {
		if got := ValidTicker(tc.in); got != tc.want {
			t.Errorf("ValidTicker(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParsePositions(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Positions
		wantErr string
	}{
		{
			name: "tickers with comments and blanks",
			in:   "# my stocks\nAAPL\n\n  MSFT  \r\n#TSLA\nBRK.B\n",
			want: Positions{"AAPL", "MSFT", "BRK.B"},
		},
		{
			name: "no trailing newline",
			in:   "AAPL",
			want: Positions{"AAPL"},
		},
		{
			name:    "comments only",
			in:      "# nothing\n\n   \n#AAPL\n",
			wantErr: "no ticker found",
		},
		{
			name:    "empty",
			in:      "",
			wantErr: "no ticker found",
		},
		{
			name:    "lowercase",
			in:      "AAPL\nmsft\n",
			wantErr: `line 2: invalid ticker "msft"`,
		},
		{
			name:    "all invalid lines reported",
			in:      "AA PL\nMSFT\nGOOG!\n",
			wantErr: `line 3: invalid ticker "GOOG!"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePositions(strings.NewReader(tc.in))
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("ParsePositions() expected an error, got %v", got)
				}
				if !errors.Is(err, ErrEnvironment) {
					t.Errorf("ParsePositions() error = %v, want ErrEnvironment", err)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("ParsePositions() error = %q, want to contain %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePositions() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParsePositions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWritePositionsTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "stocks.txt")
	if err := WritePositionsTemplate(path); err != nil {
		t.Fatalf("WritePositionsTemplate() unexpected error = %v", err)
	}

	// the template itself must be a valid positions file.
	got, err := LoadPositions(path)
	if err != nil {
		t.Fatalf("LoadPositions(template) unexpected error = %v", err)
	}
	if diff := cmp.Diff(Positions{"AAPL", "MSFT", "BRK.B"}, got); diff != "" {
		t.Errorf("template positions mismatch (-want +got):\n%s", diff)
	}

	// never overwrite.
	if err := os.WriteFile(path, []byte("TSLA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WritePositionsTemplate(path); err == nil {
		t.Error("WritePositionsTemplate() expected an error on an existing file")
	}
	content, _ := os.ReadFile(path)
	if string(content) != "TSLA\n" {
		t.Errorf("existing file was overwritten: %q", content)
	}
}
