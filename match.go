package ssrwatch

import (
	"bytes"
	"fmt"
	"strings"
)

// SoftBlockMarker appears in the framing-denial page NASDAQ serves instead of
// the list when requests are throttled.
const SoftBlockMarker = "SAMEORIGIN"

// MatchSet is the ordered list of raw list lines that matched a position.
//
// A line matched by two different tickers appears once per ticker.
type MatchSet []string

// Len returns the number of matching lines.
func (m MatchSet) Len() int { return len(m) }

// Bytes returns the lines joined by '\n', with a trailing '\n'.
func (m MatchSet) Bytes() []byte {
	if len(m) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, line := range m {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// IsSoftBlocked reports whether doc is a denial page rather than the list.
func IsSoftBlocked(doc []byte) bool {
	return bytes.Contains(doc, []byte(SoftBlockMarker))
}

// Match returns, for each ticker in order, every line of doc where the ticker
// occurs as a whole token. A soft-blocked document is rejected before any
// search with ErrRateLimited.
func Match(doc []byte, positions Positions) (MatchSet, error) {
	if IsSoftBlocked(doc) {
		return nil, fmt.Errorf("%w: response contains %q", ErrRateLimited, SoftBlockMarker)
	}
	lines := splitLines(doc)

	var matches MatchSet
	for _, ticker := range positions {
		ticker = strings.TrimSpace(ticker)
		if isComment(ticker) {
			continue
		}
		for _, line := range lines {
			if containsToken(line, ticker) {
				matches = append(matches, line)
			}
		}
	}
	return matches, nil
}

// splitLines splits doc on '\n'. A '\r' before the '\n' stays in the line.
func splitLines(doc []byte) []string {
	if len(doc) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(doc), "\n")
	return strings.Split(s, "\n")
}

// containsToken reports whether token occurs in line with no letter or digit
// immediately before or after it.
func containsToken(line, token string) bool {
	if token == "" {
		return false
	}
	for from := 0; from+len(token) <= len(line); {
		i := strings.Index(line[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if (start == 0 || !isWordByte(line[start-1])) && (end == len(line) || !isWordByte(line[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9'
}
