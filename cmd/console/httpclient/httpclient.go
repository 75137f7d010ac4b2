package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"blog-console/cmd/console/trace"
	"blog-console/cmd/internal/logger"
)

// Config는 HTTP 클라이언트 공통 설정을 캡슐화한다.
type Config struct {
	Timeout time.Duration
}

const maxBodyLog = 1024

// loggingRoundTripper는 모든 아웃바운드 HTTP 호출에 대해 공통 로깅과
// X-Request-Id 헤더 트레이싱을 수행한다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx := req.Context()
	requestID, spanID := trace.Outbound(ctx)
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	query := ""
	if req.URL != nil {
		query = req.URL.RawQuery
	}

	// JSON/폼 바디만 스니펫으로 남긴다. 비디오나 multipart 바디는 읽지 않는다.
	var bodySnippet string
	if req.Body != nil && isLoggableBody(req.Header.Get("Content-Type")) {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			if len(bodyBytes) > maxBodyLog {
				bodySnippet = string(bodyBytes[:maxBodyLog])
			} else {
				bodySnippet = string(bodyBytes)
			}
			// 실제 전송을 위해 Body 를 복원한다.
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)
	fields := logger.Fields{
		"method":     req.Method,
		"url":        redactedURL(req.URL),
		"query":      query,
		"duration":   duration.String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if sid := trace.FromContext(ctx).SessionID(); sid != "" {
		fields["session_id"] = sid
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

func isLoggableBody(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}

// redactedURL 은 서명 URL 의 쿼리(서명 값)를 로그에 남기지 않기 위해 쿼리를 제외한 URL 을 돌려준다.
func redactedURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	cp := *u
	cp.RawQuery = ""
	return cp.String()
}

// BaseClient는 공통 HTTP 클라이언트와 baseURL을 묶어두고,
// URL 생성 및 요청 생성을 도와준다.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
	// Token 이 비어 있지 않으면 모든 요청에 Bearer 토큰으로 실린다.
	Token string
}

// NewBaseClientWithClient는 이미 생성된 http.Client를 사용하는 BaseClient를 생성한다.
// httpClient가 nil이면 기본 클라이언트를 사용한다.
func NewBaseClientWithClient(httpClient *http.Client, baseURL string) *BaseClient {
	if httpClient == nil {
		httpClient = NewDefault()
	}
	return &BaseClient{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
	}
}

// NewRequest는 baseURL과 상대 경로, 쿼리, 바디를 사용해 새로운 HTTP 요청을 생성한다.
// relPath의 끝 슬래시는 유지된다. (블로그 API 는 "/api/posts/" 형태의 경로를 요구한다.)
// relPath에 쿼리(?)가 포함된 경우 path.Join이 쿼리를 손상시키므로 에러를 반환한다.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain query string (use query parameter instead): %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		joined := path.Join(base.Path, relPath)
		if strings.HasSuffix(relPath, "/") && !strings.HasSuffix(joined, "/") {
			joined += "/"
		}
		base.Path = joined
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// NewAbsoluteRequest는 baseURL 과 무관한 절대 URL(서명된 업로드 URL, 외부 에셋 URL)로 요청을 만든다.
// 토큰은 싣지 않는다.
func (c *BaseClient) NewAbsoluteRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("httpclient: absolute url required: %s", rawURL)
	}
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// Do는 내부 HTTP 클라이언트를 사용해 요청을 실행한다.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	return c.HTTPClient.Do(req)
}

// New는 주어진 설정으로 http.Client를 생성한다.
// Timeout이 0이면 기본값 10초를 사용한다.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
	}
}

// NewDefault는 공통 기본 설정(Timeout 10초)을 사용하는 http.Client를 생성한다.
func NewDefault() *http.Client {
	return New(Config{})
}

// NewStreaming는 타임아웃이 없는 http.Client 를 생성한다.
// 비디오 업로드/다운로드처럼 크기를 예측할 수 없는 전송에 쓰며, 만료는 호출자의 ctx 가 책임진다.
func NewStreaming() *http.Client {
	return &http.Client{
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
	}
}
