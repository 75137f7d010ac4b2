package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/services"
	"blog-console/cmd/console/trace"
)

const (
	SessionCookieName = "console_session"
	sessionContextKey = "console_session"
)

// ConsoleSession 은 쿠키로 식별되는 콘솔 세션을 찾거나 새로 만들어 컨텍스트에 넣는다.
func ConsoleSession(store *services.SessionStore) gin.HandlerFunc {
	maxAge := int(store.TTL().Seconds())
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookieName)
		sess, _ := store.GetOrCreate(id)

		// 매 요청마다 만료를 연장한다.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sess.ID, maxAge, "/", "", false, true)

		if span := trace.FromContext(c.Request.Context()); span != nil {
			span.BindSession(sess.ID)
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// OptionalSession 은 유효한 쿠키가 있으면 그 세션을 쓰고, 없으면 저장하지 않는
// 일회용 세션으로 요청을 처리한다. 쿠키도 발급하지 않는다. (/api/v1 용)
func OptionalSession(store *services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookieName)
		sess, ok := store.Get(id)
		if !ok {
			sess = store.Detached()
		}
		if span := trace.FromContext(c.Request.Context()); span != nil {
			span.BindSession(sess.ID)
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFrom 은 ConsoleSession 이 넣어 둔 세션을 꺼낸다.
func SessionFrom(c *gin.Context) *services.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*services.Session)
	return sess
}
