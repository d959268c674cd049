package ssrwatch

import (
	"strings"

	"github.com/etnz/ssrwatch/renderer"
)

// Notice is a notification ready to be delivered.
type Notice struct {
	RunID      string
	Subject    string
	Body       string // plain text body
	Markdown   string // optional rich version of Body
	Attachment *File  // optional
}

// File is a file attached to a Notice.
type File struct {
	Name    string
	Content []byte
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
// A lone CR counts as a line break, so the result contains no '\r' and the
// same number of lines.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// MatchNotice builds the notification for matches. It returns false when
// there is nothing to notify.
func MatchNotice(run *Run, style SendStyle, matches MatchSet) (Notice, bool) {
	if matches.Len() == 0 {
		return Notice{}, false
	}
	n := Notice{
		RunID:   run.ID(),
		Subject: renderer.Subject(run.Date()),
	}
	switch style {
	case Body:
		n.Body = NormalizeLineEndings(string(matches.Bytes()))
	default:
		n.Body = renderer.Summary(matches.Len(), run.Date())
		n.Markdown = renderer.RenderReport(report(run, matches))
		n.Attachment = &File{
			Name:    MatchFileName(run.Date()),
			Content: matches.Bytes(),
		}
	}
	return n, true
}

// FailureNotice reports a list that could not be downloaded.
func FailureNotice(run *Run, url string, cause error) Notice {
	md := renderer.RenderFailure(&renderer.Failure{Date: run.Date(), URL: url, Err: cause.Error()})
	return Notice{
		RunID:    run.ID(),
		Subject:  renderer.FailureSubject(run.Date()),
		Body:     md,
		Markdown: md,
	}
}

// RateLimitNotice reports a soft-blocked download.
func RateLimitNotice(run *Run, url string) Notice {
	md := renderer.RenderRateLimit(&renderer.Failure{Date: run.Date(), URL: url})
	return Notice{
		RunID:    run.ID(),
		Subject:  renderer.RateLimitSubject(run.Date()),
		Body:     md,
		Markdown: md,
	}
}

func report(run *Run, matches MatchSet) *renderer.Report {
	lines := make([]string, len(matches))
	for i, line := range matches {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return &renderer.Report{Date: run.Date(), Count: matches.Len(), Lines: lines}
}
