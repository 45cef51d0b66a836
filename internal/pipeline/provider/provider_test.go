package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, mutate func(cfg *config.Config)) Client {
	cfg := &config.Config{
		Finnhub: config.Finnhub{
			APIKey:         "test-token",
			BaseURL:        baseURL,
			RequestTimeout: 2 * time.Second,
			MaxRetries:     2,
			RetryBackoff:   time.Millisecond,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return NewClient(cfg, logger.NewNop(), nil)
}

func TestFetchCalendar_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/economic", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"economicCalendar":[{"country":"US","event":"CPI","impact":"high","actual":5,"estimate":4,"time":1709296200}]}`))
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, nil).FetchCalendar(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, "US", events[0].Country)
	assert.Equal(t, "5", events[0].Actual.Text)
	assert.Equal(t, int64(1709296200), events[0].Time.Int64())
}

func TestFetchCalendar_ServerErrorRetriesThenDegrades(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, nil).FetchCalendar(context.Background())
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchCalendar_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, nil).FetchCalendar(context.Background())
	assert.Empty(t, events)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchCalendar_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"economicCalendar":[{"country":"GB","event":"GDP","time":1709296200}]}`))
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, nil).FetchCalendar(context.Background())
	require.Len(t, events, 1)
	assert.False(t, events[0].Actual.Valid)
}

func TestFetchCalendar_MalformedBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	assert.Empty(t, newTestClient(srv.URL, nil).FetchCalendar(context.Background()))
}

func TestFetchCalendar_MalformedReleaseIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"economicCalendar":[
			{"country":"US","event":"CPI","impact":"high","actual":5,"estimate":4,"time":1709296200},
			{"country":"EU","event":"GDP","impact":"high","actual":1.1,"estimate":1.0,"time":"2024-03-01 08:30"},
			{"country":"GB","event":"Retail Sales","impact":"medium","actual":0.2,"estimate":0.1,"time":"next tuesday"}
		]}`))
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, nil).FetchCalendar(context.Background())
	require.Len(t, events, 2)
	assert.Equal(t, "US", events[0].Country)
	assert.Equal(t, "EU", events[1].Country)
	assert.Equal(t, int64(1709281800), events[1].Time.Int64())
}

func TestFetchCalendar_MissingAPIKeySkipsRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	events := newTestClient(srv.URL, func(cfg *config.Config) { cfg.Finnhub.APIKey = "" }).
		FetchCalendar(context.Background())
	assert.Empty(t, events)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchNews_CategoryAndCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "forex", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`[{"id":1,"headline":"Fed holds","datetime":1709296200,"category":"forex","source":"Reuters"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *config.Config) { cfg.Finnhub.CacheTTL = time.Minute })

	first := c.FetchNews(context.Background(), "forex")
	second := c.FetchNews(context.Background(), "forex")
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "Fed holds", first[0].Headline)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>FX Wire</title>
  <item>
    <title>ECB signals rate cut</title>
    <link>https://example.com/ecb</link>
    <description><![CDATA[<p>The <b>ECB</b> said   policy would ease.</p>]]></description>
    <pubDate>Fri, 01 Mar 2024 12:30:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestFetchFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *config.Config) {
		cfg.News.Feeds = []config.Feed{
			{URL: srv.URL + "/rss", Category: "forex"},
			{URL: srv.URL + "/broken", Category: "general", Source: "Broken"},
		}
	})

	articles := c.FetchFeeds(context.Background())
	require.Len(t, articles, 1)
	a := articles[0]
	assert.Equal(t, "ECB signals rate cut", a.Headline)
	assert.Equal(t, "The ECB said policy would ease.", a.Summary)
	assert.Equal(t, "FX Wire", a.Source)
	assert.Equal(t, "forex", a.Category)
	assert.Equal(t, "https://example.com/ecb", a.URL)
	assert.Equal(t, int64(1709296200), a.Datetime)
}

func TestFetchFeeds_NoneConfigured(t *testing.T) {
	articles := newTestClient("http://unused", nil).FetchFeeds(context.Background())
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}
