package ssrwatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/etnz/ssrwatch/date"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestPipeline(f Fetcher, n Notifier, style SendStyle) *Pipeline {
	return &Pipeline{Style: style, Fetcher: f, Notifier: n, Logger: zerolog.Nop()}
}

func TestPipelineOneMatch(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{doc: []byte("AAPL,Halted\nGOOG,Halted\n")}
	notifier := &fakeNotifier{}

	res, err := newTestPipeline(fetcher, notifier, Attachment).Run(context.Background(), run, Positions{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if diff := cmp.Diff(MatchSet{"AAPL,Halted"}, res.Matches); diff != "" {
		t.Errorf("Run() matches mismatch (-want +got):\n%s", diff)
	}
	if !res.Notified || len(notifier.notices) != 1 {
		t.Fatalf("Run() sent %d notices, want 1", len(notifier.notices))
	}
	n := notifier.notices[0]
	if !strings.HasPrefix(n.Body, "Found 1 positions") {
		t.Errorf("Body = %q", n.Body)
	}
	if n.Attachment == nil {
		t.Error("attachment style notice has no attachment")
	}

	// working files land in the run scratch directory.
	if got, _ := os.ReadFile(run.ListPath()); string(got) != "AAPL,Halted\nGOOG,Halted\n" {
		t.Errorf("saved list = %q", got)
	}
	if got, _ := os.ReadFile(run.MatchPath()); string(got) != "AAPL,Halted\n" {
		t.Errorf("saved matches = %q", got)
	}
}

func TestPipelineNoMatch(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{doc: []byte("GOOG,Halted\n")}
	notifier := &fakeNotifier{}

	res, err := newTestPipeline(fetcher, notifier, Attachment).Run(context.Background(), run, Positions{"AAPL"})
	if err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if res.Matches.Len() != 0 || res.Notified {
		t.Errorf("Run() = %+v, want no match and no notification", res)
	}
	if len(notifier.notices) != 0 {
		t.Errorf("Run() sent %d notices, want none", len(notifier.notices))
	}
}

func TestPipelineSoftBlocked(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{doc: []byte("SAMEORIGIN — access denied")}
	notifier := &fakeNotifier{}

	res, err := newTestPipeline(fetcher, notifier, Attachment).Run(context.Background(), run, Positions{"TSLA"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Run() error = %v, want ErrRateLimited", err)
	}
	if res.Matches.Len() != 0 {
		t.Errorf("Run() reported matches on a soft-blocked list: %v", res.Matches)
	}
	if len(notifier.notices) != 1 || !strings.Contains(notifier.notices[0].Subject, "rate-limited") {
		t.Errorf("Run() notices = %+v, want one rate-limit notice", notifier.notices)
	}
}

func TestPipelineDownloadFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"transport", fmt.Errorf("%w: GET: giving up after 3 attempt(s)", ErrTransport)},
		{"empty", fmt.Errorf("%w: 0 bytes", ErrEmptyList)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run := newTestRun(t)
			fetcher := &fakeFetcher{err: tc.err}
			notifier := &fakeNotifier{}

			_, err := newTestPipeline(fetcher, notifier, Body).Run(context.Background(), run, Positions{"AAPL"})
			if !errors.Is(err, tc.err) {
				t.Fatalf("Run() error = %v, want %v", err, tc.err)
			}
			if len(notifier.notices) != 1 {
				t.Fatalf("Run() sent %d notices, want 1", len(notifier.notices))
			}
			n := notifier.notices[0]
			if !strings.Contains(n.Subject, "2024-01-02") || !strings.Contains(n.Body, "2024-01-02") {
				t.Errorf("failure notice does not name the date: %+v", n)
			}
			if _, err := os.Stat(run.ListPath()); !errors.Is(err, os.ErrNotExist) {
				t.Error("nothing should be saved on a failed download")
			}
		})
	}
}

func TestPipelineFailureNoticeUndeliverable(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{err: ErrTransport}
	notifier := &fakeNotifier{err: ErrDelivery}

	_, err := newTestPipeline(fetcher, notifier, Body).Run(context.Background(), run, Positions{"AAPL"})
	if !errors.Is(err, ErrTransport) || !errors.Is(err, ErrDelivery) {
		t.Errorf("Run() error = %v, want both ErrTransport and ErrDelivery", err)
	}
	if Reason(err) != "transport" {
		t.Errorf("Reason() = %q, want transport", Reason(err))
	}
}

func TestPipelinePrimeFailureIsNotFatal(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{doc: []byte("GOOG\n"), primeErr: errors.New("connection refused")}

	if _, err := newTestPipeline(fetcher, &fakeNotifier{}, Body).Run(context.Background(), run, Positions{"AAPL"}); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if fetcher.primed != 1 || fetcher.downloads != 1 {
		t.Errorf("primed=%d downloads=%d, want 1 and 1", fetcher.primed, fetcher.downloads)
	}
}

func TestPipelineDeliveryFailure(t *testing.T) {
	run := newTestRun(t)
	fetcher := &fakeFetcher{doc: []byte("AAPL\n")}
	notifier := &fakeNotifier{err: fmt.Errorf("%w: sendmail exited 1", ErrDelivery)}

	res, err := newTestPipeline(fetcher, notifier, Body).Run(context.Background(), run, Positions{"AAPL"})
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("Run() error = %v, want ErrDelivery", err)
	}
	if res.Notified {
		t.Error("Notified must be false when delivery failed")
	}
	if len(notifier.notices) != 1 {
		t.Errorf("delivery must not be retried, got %d attempts", len(notifier.notices))
	}
}

// ctxFetcher blocks in Download until ctx is done.
type ctxFetcher struct{ fakeFetcher }

func (f *ctxFetcher) Download(ctx context.Context, _ date.Date) ([]byte, error) {
	f.downloads++
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
}

func TestPipelineInterrupted(t *testing.T) {
	run := newTestRun(t)
	fetcher := &ctxFetcher{}
	notifier := &fakeNotifier{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newTestPipeline(fetcher, notifier, Attachment).Run(ctx, run, Positions{"AAPL"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if got := Reason(err); got != "cancelled" {
		t.Errorf("Reason() = %q, want cancelled", got)
	}
	if len(notifier.notices) != 0 {
		t.Errorf("interrupted run sent %d notices, want none", len(notifier.notices))
	}
}
