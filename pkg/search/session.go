package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/usestring/splunk-mcp/pkg/client"
)

// Defaults applied by New to zero-valued Config fields.
const (
	DefaultMaxResultCount         = 1000
	DefaultRelativeDurationBefore = "00:00:15"
	DefaultRelativeDurationAfter  = "00:00:05"
	DefaultQueryTimeout           = 30 * time.Minute
)

// PollInterval is the pause between two job status checks.
const PollInterval = time.Second

// Config holds the connection and search settings of a Session.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	Namespace client.Namespace

	// MaxResultCount caps the rows a job retains.
	MaxResultCount int

	// Default pre-roll and post-roll for QueryRelative, as "DD:HH:MM:SS".
	RelativeDurationBefore string
	RelativeDurationAfter  string

	// QueryTimeout bounds the whole query, polling included.
	QueryTimeout time.Duration
	// NetworkTimeout bounds each HTTP round trip.
	NetworkTimeout time.Duration

	InsecureSkipVerify bool
}

// TokenCache stores session keys between queries of the same process.
type TokenCache interface {
	Get(key string) (string, bool)
	Put(key, token string)
	Remove(key string)
}

// Stats holds the timing of the poll phase of the last query.
type Stats struct {
	Start time.Time
	End   time.Time
}

// Duration is the time from the first status check until the job reported
// done. Zero if the job never completed.
func (s Stats) Duration() time.Duration {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Session runs one search at a time against Splunk: authenticate, submit,
// poll until done, download. Query calls may be made sequentially; each one
// replaces the token, search ID and results of the previous call. A Session
// must not run queries from several goroutines at once. Cancel and State
// are safe to call concurrently with a running query.
type Session struct {
	cfg    Config
	before time.Duration
	after  time.Duration

	client *client.Client
	clock  Clock
	tokens TokenCache

	state     atomic.Int32
	cancelled atomic.Bool

	token       string
	tokenCached bool
	sid         string
	stats       Stats
	results     *client.Results
}

// Option configures a Session.
type Option func(*Session)

// WithClient sets the API client. By default New builds one from the
// BaseURL, NetworkTimeout and InsecureSkipVerify settings.
func WithClient(c *client.Client) Option {
	return func(s *Session) {
		s.client = c
	}
}

// WithClock replaces the wall clock used for timeouts and poll sleeps.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithTokenCache enables reuse of session keys across queries. On a cache
// miss the session logs in as usual.
func WithTokenCache(tc TokenCache) Option {
	return func(s *Session) {
		s.tokens = tc
	}
}

// New creates a Session. It fails if a default relative duration is not in
// "DD:HH:MM:SS" form.
func New(cfg Config, opts ...Option) (*Session, error) {
	if cfg.MaxResultCount <= 0 {
		cfg.MaxResultCount = DefaultMaxResultCount
	}
	if cfg.RelativeDurationBefore == "" {
		cfg.RelativeDurationBefore = DefaultRelativeDurationBefore
	}
	if cfg.RelativeDurationAfter == "" {
		cfg.RelativeDurationAfter = DefaultRelativeDurationAfter
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = client.DefaultNetworkTimeout
	}

	before, err := ParseDuration(cfg.RelativeDurationBefore)
	if err != nil {
		return nil, fmt.Errorf("relative duration before: %w", err)
	}
	after, err := ParseDuration(cfg.RelativeDurationAfter)
	if err != nil {
		return nil, fmt.Errorf("relative duration after: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		before: before,
		after:  after,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		clientOpts := []client.Option{
			client.WithHTTPClient(client.NewHTTPClient(cfg.NetworkTimeout, cfg.InsecureSkipVerify)),
		}
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, client.WithBaseURL(cfg.BaseURL))
		}
		s.client = client.New(clientOpts...)
	}
	return s, nil
}

// Cancel asks a running query to stop. It takes effect before the next job
// status check; in-flight requests are not interrupted. Cancellation is
// permanent for the Session.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// State returns the lifecycle state of the current or last query.
func (s *Session) State() State {
	return State(s.state.Load())
}

// SID returns the search ID of the last submitted job.
func (s *Session) SID() string {
	return s.sid
}

// Stats returns the poll timing of the last query.
func (s *Session) Stats() Stats {
	return s.stats
}

// Results returns the raw payload of the last successful query, or nil.
func (s *Session) Results() *client.Results {
	return s.results
}

// QueryRelative searches the window around anchor. A zero anchor means now;
// empty before/after fall back to the configured defaults.
func (s *Session) QueryRelative(ctx context.Context, query string, anchor time.Time, before, after string) error {
	if anchor.IsZero() {
		anchor = s.clock.Now()
	}

	pre, post := s.before, s.after
	if before != "" {
		d, err := ParseDuration(before)
		if err != nil {
			return fmt.Errorf("relative duration before: %w", err)
		}
		pre = d
	}
	if after != "" {
		d, err := ParseDuration(after)
		if err != nil {
			return fmt.Errorf("relative duration after: %w", err)
		}
		post = d
	}

	start, end := RelativeWindow(anchor, pre, post)
	return s.QueryWithTime(ctx, query, start, end)
}

// QueryWithTime searches events whose event time lies in [start, end].
func (s *Session) QueryWithTime(ctx context.Context, query string, start, end time.Time) error {
	return s.Query(ctx, BuildQuery(query, &start, &end, EventTime))
}

// QueryWithIndexTime searches events indexed within [start, end].
func (s *Session) QueryWithIndexTime(ctx context.Context, query string, start, end time.Time) error {
	return s.Query(ctx, BuildQuery(query, &start, &end, IndexTime))
}

// QueryWindow searches with optional bounds on the given basis. A nil bound
// leaves that side of the window open.
func (s *Session) QueryWindow(ctx context.Context, query string, start, end *time.Time, basis TimeBasis) error {
	return s.Query(ctx, BuildQuery(query, start, end, basis))
}

// Query runs query as given and blocks until results are downloaded, the
// query fails, the query timeout elapses or the search is cancelled.
// The returned error wraps one of the stage errors of this package.
func (s *Session) Query(ctx context.Context, query string) error {
	s.token, s.tokenCached, s.sid = "", false, ""
	s.stats = Stats{}
	s.results = nil

	deadline := s.clock.Now().Add(s.cfg.QueryTimeout)

	// A cancelled session never creates another job.
	if err := s.checkCancelled(ctx); err != nil {
		return s.finish(err)
	}

	s.setState(StateAuthenticating)
	if err := s.authenticate(ctx); err != nil {
		return s.finish(err)
	}

	if err := s.checkCancelled(ctx); err != nil {
		return s.finish(err)
	}

	s.setState(StateSubmitting)
	if err := s.submit(ctx, query); err != nil {
		return s.finish(err)
	}

	s.setState(StatePolling)
	if err := s.poll(ctx, deadline); err != nil {
		return s.finish(err)
	}

	s.setState(StateDownloading)
	if err := s.download(ctx); err != nil {
		return s.finish(err)
	}

	s.setState(StateSucceeded)
	return nil
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) finish(err error) error {
	if errors.Is(err, ErrCancelled) {
		s.setState(StateCancelled)
	} else {
		s.setState(StateFailed)
	}
	return err
}

func (s *Session) checkCancelled(ctx context.Context) error {
	if s.cancelled.Load() {
		slog.Info("splunk search cancelled before submission", slog.String("user", s.cfg.Username))
		return fmt.Errorf("%w: before submission", ErrCancelled)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: before submission: %w", ErrCancelled, err)
	}
	return nil
}

// cacheKey identifies a credential set. The password enters only as a
// digest so a changed password never reuses the old session key.
func (s *Session) cacheKey() string {
	sum := sha256.Sum256([]byte(s.cfg.Password))
	return s.client.BaseURL() + "\x00" + s.cfg.Username + "\x00" + hex.EncodeToString(sum[:8])
}

// dropRejectedToken evicts the session key from the cache when the server
// answered 401 to it, whether it came from the cache or a fresh login.
func (s *Session) dropRejectedToken(err error) {
	if s.tokens == nil || !client.IsUnauthorized(err) {
		return
	}
	slog.Debug("dropping rejected cached session key", slog.String("user", s.cfg.Username))
	s.tokens.Remove(s.cacheKey())
	s.tokenCached = false
}

func (s *Session) authenticate(ctx context.Context) error {
	if s.tokens != nil {
		if token, ok := s.tokens.Get(s.cacheKey()); ok {
			slog.Debug("using cached splunk session key",
				slog.String("uri", s.client.BaseURL()),
				slog.String("user", s.cfg.Username),
			)
			s.token, s.tokenCached = token, true
			return nil
		}
	}

	slog.Debug("logging into splunk",
		slog.String("uri", s.client.BaseURL()),
		slog.String("user", s.cfg.Username),
	)
	token, err := s.client.Login(ctx, s.cfg.Username, s.cfg.Password)
	if err != nil {
		slog.Error("unable to log into splunk",
			slog.String("uri", s.client.BaseURL()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	s.token = token
	if s.tokens != nil {
		s.tokens.Put(s.cacheKey(), token)
	}
	return nil
}

func (s *Session) submit(ctx context.Context, query string) error {
	search := EnsureSearchPrefix(query)
	slog.Debug("submitting splunk search",
		slog.String("search", search),
		slog.String("uri", s.client.BaseURL()),
	)

	sid, err := s.client.CreateJob(ctx, s.cfg.Namespace, s.token, search, s.cfg.MaxResultCount)
	if err != nil {
		s.dropRejectedToken(err)
		slog.Error("splunk search submission failed",
			slog.String("search", search),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	s.sid = sid
	slog.Debug("splunk search submitted", slog.String("sid", sid))
	return nil
}

func (s *Session) poll(ctx context.Context, deadline time.Time) error {
	s.stats.Start = s.clock.Now()

	for {
		if s.cancelled.Load() {
			slog.Info("splunk search cancelled", slog.String("sid", s.sid))
			return fmt.Errorf("%w: job %s", ErrCancelled, s.sid)
		}
		if err := ctx.Err(); err != nil {
			slog.Info("splunk search cancelled", slog.String("sid", s.sid), slog.String("error", err.Error()))
			return fmt.Errorf("%w: job %s: %w", ErrCancelled, s.sid, err)
		}

		status, err := s.client.GetJobStatus(ctx, s.cfg.Namespace, s.token, s.sid)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: job %s: %w", ErrCancelled, s.sid, ctx.Err())
			}
			s.dropRejectedToken(err)
			slog.Error("unable to get status of splunk search job",
				slog.String("sid", s.sid),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("%w: %w", ErrPoll, err)
		}

		now := s.clock.Now()
		if status.IsDone {
			s.stats.End = now
			if status.IsFailed {
				slog.Warn("splunk search job finished in failed state", slog.String("sid", s.sid))
			}
			slog.Debug("splunk search job completed",
				slog.String("sid", s.sid),
				slog.Int64("duration_ms", s.stats.Duration().Milliseconds()),
			)
			return nil
		}

		if now.After(deadline) {
			slog.Error("splunk search timed out",
				slog.String("sid", s.sid),
				slog.Duration("timeout", s.cfg.QueryTimeout),
			)
			return fmt.Errorf("%w: job %s after %s", ErrPollTimeout, s.sid, s.cfg.QueryTimeout)
		}

		slog.Debug("splunk search job still running",
			slog.String("sid", s.sid),
			slog.String("dispatch_state", status.DispatchState),
			slog.Float64("done_progress", status.DoneProgress),
			slog.Int64("run_time_ms", now.Sub(s.stats.Start).Milliseconds()),
		)

		// An interrupted sleep is picked up by the ctx check above.
		_ = s.clock.Sleep(ctx, PollInterval)
	}
}

func (s *Session) download(ctx context.Context) error {
	slog.Debug("downloading splunk search results", slog.String("sid", s.sid))

	results, err := s.client.GetResults(ctx, s.cfg.Namespace, s.token, s.sid)
	if err != nil {
		s.dropRejectedToken(err)
		if errors.Is(err, client.ErrMalformedResponse) {
			slog.Error("unable to parse splunk search results",
				slog.String("sid", s.sid),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("%w: %w", ErrResultParse, err)
		}
		slog.Error("unable to download splunk search results",
			slog.String("sid", s.sid),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	s.results = results
	slog.Debug("downloaded splunk search results",
		slog.String("sid", s.sid),
		slog.Int("rows", len(results.Rows)),
	)
	return nil
}
