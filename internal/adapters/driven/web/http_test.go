package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func TestHTTPFetcher_Name(t *testing.T) {
	assert.Equal(t, "http", NewHTTPFetcher(HTTPConfig{}).Name())
	assert.Equal(t, "browser", NewBrowserFetcher(BrowserConfig{}).Name())
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPConfig{Timeout: 5 * time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "hello")
	assert.Equal(t, domain.DefaultUserAgent, gotUA)
}

func TestHTTPFetcher_CustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(HTTPConfig{UserAgent: "proctok-test"}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "proctok-test", gotUA)
}

func TestHTTPFetcher_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(HTTPConfig{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcher_TooManyRequestsSetsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPConfig{})
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.False(t, f.limiter.Allow())
}

func TestHTTPFetcher_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(HTTPConfig{}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	page, err := NewHTTPFetcher(HTTPConfig{InsecureSkipVerify: true}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "secure", page.HTML)
}

func TestHTTPFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(HTTPConfig{Timeout: time.Second}).Fetch(context.Background(), url)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestBrowserFetcher_Defaults(t *testing.T) {
	f := NewBrowserFetcher(BrowserConfig{ExecPath: "/opt/chrome"})
	assert.Equal(t, domain.DefaultBrowserWait, f.cfg.WaitTimeout)
	assert.Equal(t, domain.DefaultBrowserSettle, f.cfg.SettleDelay)
	assert.Equal(t, domain.DefaultUserAgent, f.cfg.UserAgent)
	assert.Greater(t, len(f.allocatorOptions()), len(NewBrowserFetcher(BrowserConfig{}).allocatorOptions()))
}
