package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/dto"
	"blog-console/cmd/console/middleware"
	"blog-console/cmd/console/services"
)

const (
	NavAllPosts = "posts"
	NavAddPost  = "create"
)

// render 는 세션에 쌓인 flash 메시지와 헤더 내비게이션 상태를 함께 넘겨 페이지를 그린다.
func render(c *gin.Context, status int, name, nav string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	var flashes []dto.Flash
	if sess := middleware.SessionFrom(c); sess != nil {
		flashes = sess.PopFlashes()
	}
	data["Flashes"] = flashes
	data["Nav"] = nav
	c.HTML(status, name, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

func flash(c *gin.Context, kind, message string) {
	if sess := middleware.SessionFrom(c); sess != nil {
		sess.AddFlash(kind, message)
	}
}

// userMessage 는 API 가 돌려준 message 가 있으면 그것을, 없으면 fallback 을 쓴다.
func userMessage(err error, fallback string) string {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var apiErr *blogclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// statusFor 는 원격 API 에러를 콘솔 응답 코드로 옮긴다.
func statusFor(err error) int {
	if errors.Is(err, blogclient.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
