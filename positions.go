package ssrwatch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// tickerPattern is the only shape a position line may take.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// Positions is the ordered list of tickers the user holds.
type Positions []string

// ValidTicker reports whether s is a well-formed ticker token.
func ValidTicker(s string) bool { return tickerPattern.MatchString(s) }

// isComment reports whether a trimmed line carries no ticker.
func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

// ParsePositions reads one ticker per line. Blank lines and lines starting
// with '#' are ignored. Every invalid line is reported, and a file with no
// ticker at all is an error.
func ParsePositions(r io.Reader) (Positions, error) {
	var positions Positions
	var errs error

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if isComment(line) {
			continue
		}
		if !ValidTicker(line) {
			errs = errors.Join(errs, fmt.Errorf("line %d: invalid ticker %q (allowed: A-Z 0-9 . -)", n, line))
			continue
		}
		positions = append(positions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: cannot read positions: %w", ErrEnvironment, err)
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: invalid positions:\n%w", ErrEnvironment, errs)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no ticker found, only comments or blank lines", ErrEnvironment)
	}
	return positions, nil
}

// LoadPositions parses the positions file at path.
func LoadPositions(path string) (Positions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open positions file: %w", ErrEnvironment, err)
	}
	defer f.Close()

	positions, err := ParsePositions(f)
	if err != nil {
		return nil, fmt.Errorf("positions file %q: %w", path, err)
	}
	return positions, nil
}

// PositionsTemplate is written when the positions file is missing.
const PositionsTemplate = `# ssrwatch positions file.
#
# One ticker per line, as listed on NASDAQ: uppercase letters, digits,
# dots and hyphens only. Lines starting with '#' and blank lines are ignored.
# Replace the examples below with the tickers you hold.
AAPL
MSFT
BRK.B
`

// WritePositionsTemplate creates path and its parent directories with
// example tickers. It never overwrites an existing file.
func WritePositionsTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create positions directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("cannot create positions template: %w", err)
	}
	if _, err := io.WriteString(f, PositionsTemplate); err != nil {
		f.Close()
		return fmt.Errorf("cannot write positions template: %w", err)
	}
	return f.Close()
}
