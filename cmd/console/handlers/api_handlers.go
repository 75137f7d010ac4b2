package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/console/middleware"
)

// Pinger 는 원격 블로그 API 의 응답 여부를 확인한다.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GetPostJSONHandler godoc
// @Summary      Get post detail
// @Description  Post detail served through the session detail cache. Without a console cookie a one-off session is used.
// @Tags         posts
// @Param        id   path  int  true  "Post ID"
// @Produce      json
// @Success      200  {object}  dto.PostDetail
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /api/v1/posts/{id} [get]
func GetPostJSONHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		id, ok := parseID(c.Param("id"))
		if !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid post id"})
			return
		}
		post, err := sess.Cache.Get(c.Request.Context(), id)
		if err != nil {
			status := statusFor(err)
			msg := "failed to load post"
			if status == http.StatusNotFound {
				msg = "not found"
			}
			c.JSON(status, dto.ErrorResponseDTO{Error: msg})
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports console health including reachability of the blog API
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Failure      503  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(api Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := api.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", BlogAPI: "down", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
	}
}
