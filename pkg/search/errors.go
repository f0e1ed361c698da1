package search

import "errors"

// Stage failures. Every error returned by a Session query wraps exactly one
// of these; match with errors.Is. All of them end the current query.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrSubmission     = errors.New("search submission failed")
	ErrPoll           = errors.New("search status check failed")
	ErrPollTimeout    = errors.New("search timed out")
	ErrDownload       = errors.New("result download failed")
	ErrResultParse    = errors.New("result parse failed")
	ErrCancelled      = errors.New("search cancelled")
)
