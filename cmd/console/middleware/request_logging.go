package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/internal/logger"
)

// RequestLoggingMiddleware 는 콘솔 진입부터 응답까지 걸린 시간을 한 줄로 로깅한다.
// 헬스 체크처럼 구조화 트레이스가 필요 없는 경로에 사용한다.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Log.Debugf(
			"console_request method=%s path=%s status=%d duration_ms=%d",
			method,
			path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
