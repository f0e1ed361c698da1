// Package client provides a Go SDK for the Splunk search REST API.
//
// The client covers the calls needed to run a search job end to end:
// logging in, creating a job, checking its status and downloading its
// results. It performs no retries and keeps no per-search state; see
// package search for the polling lifecycle built on top of it.
//
// # Quick Start
//
//	c := client.New(client.WithBaseURL("https://splunk.example.com:8089"))
//	token, err := c.Login(ctx, "admin", "changeme")
//	sid, err := c.CreateJob(ctx, client.Namespace{}, token, "search index=main", 1000)
//	status, err := c.GetJobStatus(ctx, client.Namespace{}, token, sid)
//	results, err := c.GetResults(ctx, client.Namespace{}, token, sid)
//
// # Namespaces
//
// Jobs are scoped by a user/app pair. Zero-valued fields select the
// wildcard "-":
//
//	ns := client.Namespace{User: "admin", App: "search"}
//
// # TLS
//
// Certificate verification is enabled by default. For lab instances with
// self-signed certificates, opt out explicitly:
//
//	c := client.New(
//	    client.WithBaseURL(uri),
//	    client.WithHTTPClient(client.NewHTTPClient(30*time.Second, true)),
//	)
//
// # Results
//
// Results are downloaded in json_rows form and validated against
// ResultsSchema. Rows whose length differs from the field list are rejected
// with ErrMalformedResponse.
package client
