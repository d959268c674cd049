// Package ssrwatch checks a list of held positions against the daily NASDAQ
// short sale restriction (SSR) list and notifies the user by email when any
// of them is restricted.
//
// A run is a strictly sequential batch:
//   - Configuration: an explicit Config value, usually loaded from YAML.
//   - Preflight: environment checks and validation of the positions file.
//   - Fetch: download of today's list (see package nasdaq).
//   - Match: whole-token search of every ticker in the downloaded list.
//   - Notify: an email, only when something matched (see package mailer).
//
// Every fatal condition is reported as an error wrapping one of the sentinel
// errors of this package, so that callers can tell them apart with errors.Is.
//
// This package serves as the foundational logic for the `ssrwatch`
// command-line tool.
package ssrwatch
