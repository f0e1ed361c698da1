// Package prompts contains MCP prompt implementations for Splunk searches.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	RelativeDurationBefore string
	RelativeDurationAfter  string
	DefaultRecordLimit     int
	TokenCacheEnabled      bool
}
