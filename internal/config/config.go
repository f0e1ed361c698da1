// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/usestring/splunk-mcp/pkg/client"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// Tool output limit defaults
const (
	DefaultRecordLimitValue      = 100
	MaxRecordLimitValue          = 10000
	DefaultBatchMaxParallelValue = 4
)

// Config holds all configuration for the MCP server and CLI.
type Config struct {
	SplunkURI              string        // SPLUNK_URI, default "https://localhost:8089"
	SplunkUsername         string        // SPLUNK_USERNAME
	SplunkPassword         string        // SPLUNK_PASSWORD
	MaxResultCount         int           // SPLUNK_MAX_RESULT_COUNT, default 1000
	RelativeDurationBefore string        // SPLUNK_RELATIVE_DURATION_BEFORE, default "00:00:15"
	RelativeDurationAfter  string        // SPLUNK_RELATIVE_DURATION_AFTER, default "00:00:05"
	QueryTimeout           time.Duration // SPLUNK_QUERY_TIMEOUT as DD:HH:MM:SS, default "00:30:00"
	NetworkTimeout         time.Duration // SPLUNK_NETWORK_TIMEOUT_MS, default 30000ms (30s)
	NamespaceUser          string        // SPLUNK_NAMESPACE_USER, default "-"
	NamespaceApp           string        // SPLUNK_NAMESPACE_APP, default "-"
	SSLVerify              bool          // SPLUNK_SSL_VERIFY, default true
	Timezone               string        // SPLUNK_TIMEZONE, default "" (process local zone)

	// Session key reuse; disabled when the TTL is zero
	TokenCacheTTL      time.Duration // TOKEN_CACHE_TTL_MS, default 0
	TokenCacheMaxItems int           // TOKEN_CACHE_MAX_ITEMS, default 16

	// Tool output limits
	DefaultRecordLimit int // DEFAULT_RECORD_LIMIT, default 100
	MaxRecordLimit     int // MAX_RECORD_LIMIT, default 10000
	BatchMaxParallel   int // BATCH_MAX_PARALLEL, default 4

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SplunkURI:              getEnvString("SPLUNK_URI", client.DefaultBaseURL),
		SplunkUsername:         getEnvString("SPLUNK_USERNAME", ""),
		SplunkPassword:         getEnvString("SPLUNK_PASSWORD", ""),
		MaxResultCount:         getEnvInt("SPLUNK_MAX_RESULT_COUNT", search.DefaultMaxResultCount),
		RelativeDurationBefore: getEnvSpanString("SPLUNK_RELATIVE_DURATION_BEFORE", search.DefaultRelativeDurationBefore),
		RelativeDurationAfter:  getEnvSpanString("SPLUNK_RELATIVE_DURATION_AFTER", search.DefaultRelativeDurationAfter),
		QueryTimeout:           getEnvSpan("SPLUNK_QUERY_TIMEOUT", "00:30:00"),
		NetworkTimeout:         getEnvDurationMs("SPLUNK_NETWORK_TIMEOUT_MS", 30000),
		NamespaceUser:          getEnvString("SPLUNK_NAMESPACE_USER", client.WildcardNamespace),
		NamespaceApp:           getEnvString("SPLUNK_NAMESPACE_APP", client.WildcardNamespace),
		SSLVerify:              getEnvBool("SPLUNK_SSL_VERIFY", true),
		Timezone:               getEnvString("SPLUNK_TIMEZONE", ""),

		TokenCacheTTL:      getEnvDurationMs("TOKEN_CACHE_TTL_MS", 0),
		TokenCacheMaxItems: getEnvInt("TOKEN_CACHE_MAX_ITEMS", 16),

		DefaultRecordLimit: getEnvInt("DEFAULT_RECORD_LIMIT", DefaultRecordLimitValue),
		MaxRecordLimit:     getEnvInt("MAX_RECORD_LIMIT", MaxRecordLimitValue),
		BatchMaxParallel:   getEnvInt("BATCH_MAX_PARALLEL", DefaultBatchMaxParallelValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// SessionConfig converts the Splunk settings to a search.Config.
func (c *Config) SessionConfig() search.Config {
	return search.Config{
		BaseURL:  c.SplunkURI,
		Username: c.SplunkUsername,
		Password: c.SplunkPassword,
		Namespace: client.Namespace{
			User: c.NamespaceUser,
			App:  c.NamespaceApp,
		},
		MaxResultCount:         c.MaxResultCount,
		RelativeDurationBefore: c.RelativeDurationBefore,
		RelativeDurationAfter:  c.RelativeDurationAfter,
		QueryTimeout:           c.QueryTimeout,
		NetworkTimeout:         c.NetworkTimeout,
		InsecureSkipVerify:     !c.SSLVerify,
	}
}

// Location returns the configured default zone for event timestamps.
func (c *Config) Location() *time.Location {
	return search.ResolveLocation(c.Timezone, time.Local)
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

// getEnvSpanString returns the DD:HH:MM:SS value of key if it parses.
func getEnvSpanString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		if _, err := search.ParseDuration(v); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvSpan(key, defaultVal string) time.Duration {
	d, _ := search.ParseDuration(getEnvSpanString(key, defaultVal))
	return d
}
