package ssrwatch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/etnz/ssrwatch/date"
	"github.com/rs/zerolog"
)

// Fetcher retrieves the daily list.
type Fetcher interface {
	// Prime performs the preliminary request the upstream expects before a
	// download. Its failure is not fatal.
	Prime(ctx context.Context) error
	// Download returns the list published for day.
	Download(ctx context.Context, day date.Date) ([]byte, error)
	// ListURL is the address of the list published for day.
	ListURL(day date.Date) string
}

// Notifier delivers a notice.
type Notifier interface {
	Deliver(ctx context.Context, n Notice) error
}

// Result summarizes a completed run.
type Result struct {
	Date     date.Date
	Matches  MatchSet
	Notified bool
}

// Pipeline runs fetch, match and notify for one day.
type Pipeline struct {
	Style    SendStyle
	Fetcher  Fetcher
	Notifier Notifier
	Logger   zerolog.Logger
}

// Run executes the pipeline. Positions must have gone through Preflight.
//
// Download failures and soft-blocked lists are reported to the user with a
// notice before Run returns their error. An interrupted run (ctx done) sends
// nothing.
func (p *Pipeline) Run(ctx context.Context, run *Run, positions Positions) (Result, error) {
	log := p.Logger.With().Str("run_id", run.ID()).Str("date", run.Date().String()).Logger()
	res := Result{Date: run.Date()}
	url := p.Fetcher.ListURL(run.Date())

	if err := p.Fetcher.Prime(ctx); err != nil {
		log.Warn().Err(err).Msg("priming request failed, downloading anyway")
	}

	log.Info().Str("url", url).Msg("downloading SSR list")
	doc, err := p.Fetcher.Download(ctx, run.Date())
	if err != nil && ctx.Err() != nil {
		log.Warn().Err(err).Msg("run interrupted during download")
		return res, fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	if err != nil {
		log.Error().Err(err).Str("reason", Reason(err)).Msg("download failed")
		return res, p.abort(ctx, log, FailureNotice(run, url, err), err)
	}
	if err := os.WriteFile(run.ListPath(), doc, 0644); err != nil {
		return res, fmt.Errorf("%w: cannot save SSR list: %w", ErrEnvironment, err)
	}
	log.Debug().Int("bytes", len(doc)).Str("path", run.ListPath()).Msg("SSR list saved")

	matches, err := Match(doc, positions)
	if err != nil {
		log.Error().Err(err).Msg("SSR list rejected")
		return res, p.abort(ctx, log, RateLimitNotice(run, url), err)
	}
	res.Matches = matches
	log.Info().Int("positions", len(positions)).Int("matches", matches.Len()).Msg("SSR list checked")

	n, ok := MatchNotice(run, p.Style, matches)
	if !ok {
		log.Info().Msg("no position on the SSR list, nothing to send")
		return res, nil
	}
	if err := os.WriteFile(run.MatchPath(), matches.Bytes(), 0644); err != nil {
		return res, fmt.Errorf("%w: cannot save matches: %w", ErrEnvironment, err)
	}
	if err := p.Notifier.Deliver(ctx, n); err != nil {
		log.Error().Err(err).Msg("notification failed")
		return res, err
	}
	res.Notified = true
	log.Info().Str("style", p.Style.String()).Msg("notification sent")
	return res, nil
}

// abort delivers n and returns cause, joined with the delivery error if any.
func (p *Pipeline) abort(ctx context.Context, log zerolog.Logger, n Notice, cause error) error {
	if err := p.Notifier.Deliver(ctx, n); err != nil {
		log.Error().Err(err).Msg("failure notification failed")
		return errors.Join(cause, err)
	}
	log.Info().Str("subject", n.Subject).Msg("failure notification sent")
	return cause
}
