// Package errors defines the error taxonomy shared across the application.
package errors

import (
	"errors"
	"fmt"
)

// ErrLinkNotFound is returned when an alias does not exist or the link
// behind it has been deactivated.
var ErrLinkNotFound = errors.New("link not found")

// ErrInvalidURL is returned when the provided long URL is malformed or uses
// a scheme other than http/https.
var ErrInvalidURL = errors.New("invalid URL format")

// ErrInvalidAlias is returned when a custom alias does not match the
// accepted format (4-20 alphanumerics, hyphen or underscore).
var ErrInvalidAlias = errors.New("invalid custom alias format")

// ErrAliasConflict is returned when an alias is already taken: either a
// custom alias that exists, or a generated candidate that lost the insert
// race. The generated case is retried by the caller.
var ErrAliasConflict = errors.New("alias already exists")

// ErrAliasExhausted is returned when alias generation failed to produce a
// unique candidate within the retry budget.
var ErrAliasExhausted = errors.New("failed to generate unique alias")

// ErrUnauthenticated is returned by the auth boundary when credentials are
// missing or unknown.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrClickRecordingFailed wraps a failure to persist a click event. It is
// only ever logged; click recording never fails a redirect.
type ErrClickRecordingFailed struct {
	Alias  string
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for alias %s: %s", e.Alias, e.Reason)
}

// ErrURLCheckFailed is returned when a monitor health check on a long URL
// cannot be performed.
type ErrURLCheckFailed struct {
	URL    string
	Reason string
}

func (e ErrURLCheckFailed) Error() string {
	return fmt.Sprintf("failed to check URL %s: %s", e.URL, e.Reason)
}
