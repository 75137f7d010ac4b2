package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/cmd/console/trace"
)

func TestNewRequestKeepsTrailingSlashAndQuery(t *testing.T) {
	c := NewBaseClientWithClient(nil, "http://api.local/base")

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/api/posts/", url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local/base/api/posts/?page=2", req.URL.String())
}

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	c := NewBaseClientWithClient(nil, "http://api.local")

	_, err := c.NewRequest(context.Background(), http.MethodGet, "/api/posts/?page=1", nil, nil)
	assert.Error(t, err)
}

func TestNewRequestSetsBearerToken(t *testing.T) {
	c := NewBaseClientWithClient(nil, "http://api.local")
	c.Token = "secret"

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/api/categories/", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestNewAbsoluteRequestRequiresAbsoluteURL(t *testing.T) {
	c := NewBaseClientWithClient(nil, "http://api.local")

	_, err := c.NewAbsoluteRequest(context.Background(), http.MethodPut, "videos/a.mp4", nil)
	assert.Error(t, err)

	req, err := c.NewAbsoluteRequest(context.Background(), http.MethodPut, "https://bucket.s3.amazonaws.com/a.mp4?X-Amz-Signature=abc", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestLoggingRoundTripperPropagatesTraceHeaders(t *testing.T) {
	var gotRequestID, gotSpanID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		gotSpanID = r.Header.Get("X-Span-Id")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewBaseClientWithClient(nil, srv.URL)
	ctx, _ := trace.Start(context.Background(), "req-abc")
	req, err := c.NewRequest(ctx, http.MethodPost, "/api/posts/", nil, strings.NewReader(`{"title":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "req-abc", gotRequestID)
	assert.Equal(t, "1", gotSpanID)
	assert.Equal(t, `{"title":"x"}`, gotBody)
}

func TestRedactedURLDropsSignature(t *testing.T) {
	u, err := url.Parse("https://bucket.s3.amazonaws.com/videos/a.mp4?X-Amz-Signature=abc")
	require.NoError(t, err)

	assert.Equal(t, "https://bucket.s3.amazonaws.com/videos/a.mp4", redactedURL(u))
}
