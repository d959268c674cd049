package ssrwatch

import (
	"context"
	"testing"

	"github.com/etnz/ssrwatch/date"
)

var testDay = date.New(2024, 1, 2)

// newTestRun returns a Run in a temporary work directory, closed at the end of the test.
func newTestRun(t *testing.T) *Run {
	t.Helper()
	run, err := NewRun(t.TempDir(), testDay)
	if err != nil {
		t.Fatalf("NewRun() unexpected error = %v", err)
	}
	t.Cleanup(func() { run.Close() })
	return run
}

type fakeFetcher struct {
	doc      []byte
	err      error
	primeErr error

	primed    int
	downloads int
}

func (f *fakeFetcher) Prime(context.Context) error {
	f.primed++
	return f.primeErr
}

func (f *fakeFetcher) Download(context.Context, date.Date) ([]byte, error) {
	f.downloads++
	return f.doc, f.err
}

func (f *fakeFetcher) ListURL(day date.Date) string {
	return "https://example.test/" + ListFileName(day)
}

type fakeNotifier struct {
	notices []Notice
	err     error
}

func (n *fakeNotifier) Deliver(_ context.Context, notice Notice) error {
	n.notices = append(n.notices, notice)
	return n.err
}
