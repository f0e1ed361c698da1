package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  int
	onSleep func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps++
	fn := c.onSleep
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
	return ctx.Err()
}

// fakeSplunk serves the four search endpoints from canned responses.
type fakeSplunk struct {
	mu sync.Mutex

	loginStatus   int
	submitStatus  int
	pollStatus    int
	resultsStatus int

	done        []string // isDone per status call; the last value repeats
	resultsBody string

	logins, submits, polls, downloads int
	searches                          []string
	authHeaders                       []string
}

func (f *fakeSplunk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/services/auth/login":
		f.logins++
		if f.loginStatus != 0 {
			w.WriteHeader(f.loginStatus)
			return
		}
		fmt.Fprintf(w, "<response><sessionKey>tok-%d</sessionKey></response>", f.logins)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/search/jobs"):
		f.submits++
		_ = r.ParseForm()
		f.searches = append(f.searches, r.PostForm.Get("search"))
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		if f.submitStatus != 0 {
			w.WriteHeader(f.submitStatus)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("<response><sid>sid-1</sid></response>"))

	case strings.HasSuffix(path, "/results"):
		f.downloads++
		if f.resultsStatus != 0 {
			w.WriteHeader(f.resultsStatus)
			return
		}
		body := f.resultsBody
		if body == "" {
			body = `{"fields":["a","b"],"rows":[["1","x"],["2","y"]]}`
		}
		_, _ = w.Write([]byte(body))

	case strings.Contains(path, "/search/jobs/"):
		f.polls++
		if f.pollStatus != 0 {
			w.WriteHeader(f.pollStatus)
			return
		}
		done := "1"
		if len(f.done) > 0 {
			idx := min(f.polls-1, len(f.done)-1)
			done = f.done[idx]
		}
		fmt.Fprintf(w, `<entry xmlns:s="http://dev.splunk.com/ns/rest"><content><s:dict>`+
			`<s:key name="dispatchState">RUNNING</s:key><s:key name="isDone">%s</s:key>`+
			`</s:dict></content></entry>`, done)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestSession(t *testing.T, f *fakeSplunk, clock Clock, cfg Config, opts ...Option) *Session {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.Username = "admin"
	cfg.Password = "changeme"
	cfg.NetworkTimeout = 5 * time.Second

	s, err := New(cfg, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestSession_Query_Success(t *testing.T) {
	f := &fakeSplunk{done: []string{"0", "0", "1"}}
	clock := newFakeClock()
	s := newTestSession(t, f, clock, Config{})

	_, ok := s.Records()
	assert.False(t, ok)
	assert.Equal(t, StateIdle, s.State())

	err := s.Query(context.Background(), "index=main")
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, s.State())
	assert.Equal(t, "sid-1", s.SID())
	assert.Equal(t, []string{"search index=main"}, f.searches)
	assert.Equal(t, []string{"Splunk tok-1"}, f.authHeaders)
	assert.Equal(t, 3, f.polls)
	assert.Equal(t, 2, clock.sleeps)
	assert.Equal(t, 1, f.downloads)
	assert.Equal(t, 2*time.Second, s.Stats().Duration())

	records, ok := s.Records()
	require.True(t, ok)
	assert.Equal(t, []Record{
		{"a": "1", "b": "x"},
		{"a": "2", "b": "y"},
	}, records)
}

func TestSession_Query_ZeroRows(t *testing.T) {
	f := &fakeSplunk{resultsBody: `{"fields":[],"rows":[]}`}
	s := newTestSession(t, f, newFakeClock(), Config{})

	require.NoError(t, s.Query(context.Background(), "search nothing"))

	records, ok := s.Records()
	require.True(t, ok)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, StateSucceeded, s.State())
}

func TestSession_Query_Timeout(t *testing.T) {
	f := &fakeSplunk{done: []string{"0"}}
	s := newTestSession(t, f, newFakeClock(), Config{QueryTimeout: 3 * time.Second})

	err := s.Query(context.Background(), "search slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 0, f.downloads)
	assert.Equal(t, 5, f.polls)

	_, ok := s.Records()
	assert.False(t, ok)
}

func TestSession_Cancel_StopsPolling(t *testing.T) {
	f := &fakeSplunk{done: []string{"0"}}
	clock := newFakeClock()
	s := newTestSession(t, f, clock, Config{})
	clock.onSleep = s.Cancel

	err := s.Query(context.Background(), "search forever")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateCancelled, s.State())
	assert.True(t, s.Cancelled())
	assert.Equal(t, 1, f.polls)
	assert.Equal(t, 0, f.downloads)

	_, ok := s.Records()
	assert.False(t, ok)
}

func TestSession_ContextCancel_StopsPolling(t *testing.T) {
	f := &fakeSplunk{done: []string{"0"}}
	clock := newFakeClock()
	s := newTestSession(t, f, clock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.onSleep = cancel

	err := s.Query(ctx, "search forever")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.polls)
	assert.Equal(t, 0, f.downloads)
}

func TestSession_StageFailures(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeSplunk
		wantErr error
		submits int
		polls   int
		dls     int
	}{
		{"login rejected", &fakeSplunk{loginStatus: http.StatusUnauthorized}, ErrAuthentication, 0, 0, 0},
		{"submit rejected", &fakeSplunk{submitStatus: http.StatusBadRequest}, ErrSubmission, 1, 0, 0},
		{"job vanished", &fakeSplunk{pollStatus: http.StatusNotFound}, ErrPoll, 1, 1, 0},
		{"unparseable status", &fakeSplunk{done: []string{"maybe"}}, ErrPoll, 1, 1, 0},
		{"download rejected", &fakeSplunk{resultsStatus: http.StatusInternalServerError}, ErrDownload, 1, 1, 1},
		{"bad json", &fakeSplunk{resultsBody: `{"rows":`}, ErrResultParse, 1, 1, 1},
		{"misaligned rows", &fakeSplunk{resultsBody: `{"fields":["a"],"rows":[["1","2"]]}`}, ErrResultParse, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.fake, newFakeClock(), Config{})

			err := s.Query(context.Background(), "search x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateFailed, s.State())
			assert.Equal(t, tt.submits, tt.fake.submits)
			assert.Equal(t, tt.polls, tt.fake.polls)
			assert.Equal(t, tt.dls, tt.fake.downloads)

			_, ok := s.Records()
			assert.False(t, ok)
		})
	}
}

func TestSession_QueryRelative_Defaults(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})

	anchor := time.Date(2024, 2, 3, 4, 5, 30, 0, time.UTC)
	require.NoError(t, s.QueryRelative(context.Background(), "index=main", anchor, "", ""))

	require.Len(t, f.searches, 1)
	assert.Equal(t, "search earliest=02/03/2024:04:05:15 latest=02/03/2024:04:05:35 index=main", f.searches[0])
}

func TestSession_QueryRelative_Overrides(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})

	anchor := time.Date(2024, 2, 3, 4, 5, 30, 0, time.UTC)
	require.NoError(t, s.QueryRelative(context.Background(), "index=main", anchor, "01:00:00", "1:00:00:00"))

	assert.Equal(t, "search earliest=02/03/2024:03:05:30 latest=02/04/2024:04:05:30 index=main", f.searches[0])

	err := s.QueryRelative(context.Background(), "index=main", anchor, "bogus", "")
	assert.Error(t, err)
}

func TestSession_QueryRelative_AnchorsAtNow(t *testing.T) {
	f := &fakeSplunk{}
	clock := newFakeClock()
	s := newTestSession(t, f, clock, Config{RelativeDurationBefore: "10", RelativeDurationAfter: "20"})

	require.NoError(t, s.QueryRelative(context.Background(), "index=main", time.Time{}, "", ""))
	assert.Equal(t, "search earliest=12/31/2023:23:59:50 latest=01/01/2024:00:00:20 index=main", f.searches[0])
}

func TestSession_QueryWithIndexTime(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)
	require.NoError(t, s.QueryWithIndexTime(context.Background(), "index=main", start, end))

	assert.Equal(t, "search _index_earliest=01/01/2024:00:00:00 _index_latest=01/01/2024:00:00:10 index=main", f.searches[0])
}

// mapTokenCache is a minimal TokenCache for tests.
type mapTokenCache struct {
	tokens map[string]string
}

func (c *mapTokenCache) Get(key string) (string, bool) {
	tok, ok := c.tokens[key]
	return tok, ok
}
func (c *mapTokenCache) Put(key, token string) { c.tokens[key] = token }
func (c *mapTokenCache) Remove(key string)     { delete(c.tokens, key) }

func TestSession_TokenCache(t *testing.T) {
	f := &fakeSplunk{}
	cache := &mapTokenCache{tokens: map[string]string{}}
	s := newTestSession(t, f, newFakeClock(), Config{}, WithTokenCache(cache))

	require.NoError(t, s.Query(context.Background(), "search a"))
	require.NoError(t, s.Query(context.Background(), "search b"))

	assert.Equal(t, 1, f.logins)
	assert.Equal(t, []string{"Splunk tok-1", "Splunk tok-1"}, f.authHeaders)
}

func TestSession_TokenCache_EvictsRejectedToken(t *testing.T) {
	f := &fakeSplunk{submitStatus: http.StatusUnauthorized}
	cache := &mapTokenCache{tokens: map[string]string{}}
	s := newTestSession(t, f, newFakeClock(), Config{}, WithTokenCache(cache))
	cache.tokens[s.cacheKey()] = "stale"

	err := s.Query(context.Background(), "search a")
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Equal(t, 0, f.logins)
	assert.Empty(t, cache.tokens)

	f.submitStatus = 0
	require.NoError(t, s.Query(context.Background(), "search a"))
	assert.Equal(t, 1, f.logins)
	assert.Equal(t, "tok-1", cache.tokens[s.cacheKey()])
}

func TestSession_TokenCache_EvictsOnLaterStages(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeSplunk
		wantErr error
	}{
		{"status rejected", &fakeSplunk{pollStatus: http.StatusUnauthorized}, ErrPoll},
		{"results rejected", &fakeSplunk{resultsStatus: http.StatusUnauthorized}, ErrDownload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &mapTokenCache{tokens: map[string]string{}}
			s := newTestSession(t, tt.fake, newFakeClock(), Config{}, WithTokenCache(cache))
			cache.tokens[s.cacheKey()] = "stale"

			err := s.Query(context.Background(), "search a")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, cache.tokens)
		})
	}
}

func TestSession_CacheKey_ChangesWithPassword(t *testing.T) {
	s := newTestSession(t, &fakeSplunk{}, newFakeClock(), Config{})
	before := s.cacheKey()

	s.cfg.Password = "rotated"
	assert.NotEqual(t, before, s.cacheKey())
	assert.NotContains(t, s.cacheKey(), "rotated")
}

func TestSession_Cancel_BeforeQuery(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})
	s.Cancel()

	err := s.Query(context.Background(), "search a")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateCancelled, s.State())
	assert.Equal(t, 0, f.logins)
	assert.Equal(t, 0, f.submits)
}

func TestSession_ContextDone_BeforeQuery(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Query(ctx, "search a")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.submits)
}

func TestSession_ResetsBetweenQueries(t *testing.T) {
	f := &fakeSplunk{}
	s := newTestSession(t, f, newFakeClock(), Config{})

	require.NoError(t, s.Query(context.Background(), "search a"))
	_, ok := s.Records()
	require.True(t, ok)

	f.resultsStatus = http.StatusInternalServerError
	require.Error(t, s.Query(context.Background(), "search b"))

	_, ok = s.Records()
	assert.False(t, ok)
	assert.Equal(t, StateFailed, s.State())
}

func TestNew_InvalidDefaults(t *testing.T) {
	_, err := New(Config{RelativeDurationBefore: "x"})
	assert.Error(t, err)

	_, err = New(Config{RelativeDurationAfter: "1:2:3:4:5"})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResultCount, s.cfg.MaxResultCount)
	assert.Equal(t, DefaultQueryTimeout, s.cfg.QueryTimeout)
	assert.Equal(t, 15*time.Second, s.before)
	assert.Equal(t, 5*time.Second, s.after)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateDownloading.Terminal())
}
