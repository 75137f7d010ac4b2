package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/trace"
	"blog-console/cmd/internal/logger"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"
	maxBodyLog      = 1024
)

// RequestTrace는 모든 inbound HTTP 요청에 대해 Request ID와 Span ID를 보장하고,
// 이를 컨텍스트/헤더에 저장한 뒤 콘솔 로그에 포함시킨다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		// inbound 로그는 span_id=0, 블로그 API 호출은 1,2,3,... 로 증가한다.
		ctx, span := trace.Start(req.Context(), req.Header.Get(headerRequestID))
		c.Request = req.WithContext(ctx)
		req = c.Request

		requestID := span.RequestID
		currentSpan := span.Current()
		c.Request.Header.Set(headerRequestID, requestID)
		c.Request.Header.Set(headerSpanID, currentSpan)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, currentSpan)

		queryParams := map[string][]string{}
		for key, values := range req.URL.Query() {
			if len(values) > 0 {
				queryParams[key] = values
			}
		}

		// 폼 바디만 스니펫으로 남긴다. multipart(이미지/비디오) 바디는 읽지 않는다.
		var bodySnippet string
		if req.Body != nil && req.ContentLength != 0 && req.Method == http.MethodPost &&
			strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if bodyBytes, err := io.ReadAll(req.Body); err == nil {
				if len(bodyBytes) > maxBodyLog {
					bodySnippet = string(bodyBytes[:maxBodyLog])
				} else {
					bodySnippet = string(bodyBytes)
				}
				// gin 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		c.Next()

		fields := logger.Fields{
			"method":       req.Method,
			"path":         req.URL.Path,
			"query_params": queryParams,
			"status":       c.Writer.Status(),
			"duration":     time.Since(start).String(),
			"request_id":   requestID,
			"span_id":      span.Current(),
		}
		if sid := span.SessionID(); sid != "" {
			fields["session_id"] = sid
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		logger.InfoWithFields("completed request", fields)
	}
}
