package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/ssrwatch"
	"github.com/mattn/go-isatty"
)

// printMarkdown renders md for the terminal, or writes it as is when w is not one.
func printMarkdown(w io.Writer, md string) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprint(w, md)
}

// printNotifier prints notices instead of mailing them (check -dry-run).
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Deliver(_ context.Context, n ssrwatch.Notice) error {
	fmt.Fprintf(p.w, "Subject: %s\n\n", n.Subject)
	if n.Markdown != "" {
		printMarkdown(p.w, n.Markdown)
	} else {
		fmt.Fprint(p.w, n.Body)
	}
	if a := n.Attachment; a != nil {
		fmt.Fprintf(p.w, "\n[attachment %s, %d bytes]\n", a.Name, len(a.Content))
	}
	return nil
}
