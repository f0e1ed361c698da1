// Package search runs Splunk searches to completion and exposes their
// results as records.
//
// A Session owns one query at a time and walks it through the lifecycle
//
//	idle → authenticating → submitting → polling → downloading → succeeded
//
// ending early in failed or cancelled. Every stage failure is returned as
// an error wrapping one of ErrAuthentication, ErrSubmission, ErrPoll,
// ErrPollTimeout, ErrDownload, ErrResultParse or ErrCancelled. Nothing is
// retried; build a new query to try again.
//
// Basic use:
//
//	s, err := search.New(search.Config{
//	    BaseURL:  "https://splunk.example.com:8089",
//	    Username: "admin",
//	    Password: "changeme",
//	})
//	if err := s.QueryRelative(ctx, "index=proxy dest=evil.example", eventTime, "", ""); err != nil {
//	    return err
//	}
//	records, _ := s.Records()
//
// Time windows are spliced into the query text right after the leading
// "search" command; see BuildQuery.
package search
