// Package renderer produces the text of ssrwatch notifications.
//
// Long texts are markdown rendered from embedded text/templates, so that the
// same output can be sent as a plain text body, converted to HTML or printed
// on a terminal.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/ssrwatch/date"
)

//go:embed templates/*.md
var embedded embed.FS

var templates = mustSub(embedded, "templates")

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Report is a match report for one day.
type Report struct {
	Date  date.Date
	Count int
	Lines []string
}

// Failure describes a list that could not be used.
type Failure struct {
	Date date.Date
	URL  string
	Err  string
}

// Subject is the subject of the match notification.
func Subject(day date.Date) string {
	return fmt.Sprintf("NASDAQ SSR list matches for %s", day)
}

// Summary is the one-line body of an attachment-style notification.
func Summary(count int, day date.Date) string {
	return fmt.Sprintf("Found %d positions on NASDAQ SSR list for %s", count, day)
}

// FailureSubject is the subject of the download failure notification.
func FailureSubject(day date.Date) string {
	return fmt.Sprintf("NASDAQ SSR list unavailable for %s", day)
}

// RateLimitSubject is the subject of the rate-limit notification.
func RateLimitSubject(day date.Date) string {
	return fmt.Sprintf("NASDAQ SSR list for %s: could not pull file, likely rate-limited", day)
}

// RenderReport renders a match report to markdown.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title": "report_title.md",
		"report_lines": "report_lines.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// RenderFailure renders the download failure notice to markdown.
func RenderFailure(f *Failure) string {
	return renderTemplate("failure", "failure.md", nil, f)
}

// RenderRateLimit renders the rate-limit notice to markdown.
func RenderRateLimit(f *Failure) string {
	return renderTemplate("ratelimit", "ratelimit.md", nil, f)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
