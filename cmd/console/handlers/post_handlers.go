package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/dto"
	"blog-console/cmd/console/middleware"
	"blog-console/cmd/console/services"
	"blog-console/cmd/internal/logger"
)

const (
	msgLoadPostsFailed   = "Failed to load posts"
	msgFilterFailed      = "Failed to fetch posts"
	msgPostDeleted       = "Post deleted successfully!"
	msgDeleteFailed      = "Failed to delete post"
	msgVideoFetchFailed  = "Failed to fetch video"
	msgVideoDownloadFail = "Failed to download video. Please check if the file is accessible."
)

// AssetFetcher streams a stored asset such as a featured video.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, assetURL string) (*blogclient.Asset, error)
}

// ListPostsHandler 는 세션의 Coordinator 상태를 카드 목록으로 그린다.
// ?page=N 이 있으면 해당 페이지를 먼저 불러온다.
func ListPostsHandler(cards services.CardOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		ctx := c.Request.Context()
		coord := sess.Coordinator

		// 실패는 Coordinator 가 로깅하고 카테고리 목록은 비어 있는 채로 둔다.
		_ = coord.LoadCategories(ctx)

		var err error
		if raw := c.Query("page"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil {
				n = 0
			}
			err = coord.LoadPage(ctx, n)
		} else if !coord.Loaded() {
			err = coord.LoadPage(ctx, 1)
		}
		if err != nil && !isNavigationError(err) {
			flash(c, dto.FlashError, userMessage(err, msgLoadPostsFailed))
		}

		render(c, http.StatusOK, "list.tmpl", NavAllPosts, gin.H{
			"List": buildListPage(coord.View(), cards),
		})
	}
}

// isNavigationError 는 요청을 보내지 않고 거절된 페이지 이동이나 버려진 응답이다.
func isNavigationError(err error) bool {
	return errors.Is(err, services.ErrPageOutOfRange) ||
		errors.Is(err, services.ErrNotPaginated) ||
		errors.Is(err, services.ErrStaleResponse)
}

func buildListPage(view services.CoordinatorView, cards services.CardOptions) dto.ListPage {
	page := dto.ListPage{
		Cards:             services.RenderCards(view.Posts, cards),
		Categories:        view.Categories,
		Total:             view.Total(),
		TotalPages:        view.TotalPages(),
		PaginationVisible: view.PaginationVisible(),
		CanPrev:           view.CanPrev(),
		CanNext:           view.CanNext(),
	}
	switch m := view.Mode.(type) {
	case services.Paginated:
		page.Page = m.Page
	case services.Filtered:
		page.Filtered = true
		page.Truncated = m.Truncated
		page.Criteria = m.Criteria
	}
	return page
}

// FilterPostsHandler 는 검색어/카테고리 폼을 받아 필터 모드로 전환한다.
// 둘 다 비어 있으면 1페이지로 돌아간다.
func FilterPostsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		criteria := dto.FilterCriteria{Search: c.PostForm("search")}
		if raw := strings.TrimSpace(c.PostForm("category")); raw != "" {
			if id, ok := parseID(raw); ok {
				criteria.CategoryID = id
			}
		}

		if err := sess.Coordinator.ApplyFilter(c.Request.Context(), criteria); err != nil && !isNavigationError(err) {
			flash(c, dto.FlashError, userMessage(err, msgFilterFailed))
		}
		redirect(c, "/posts")
	}
}

// ClearFilterHandler 는 필터를 해제하고 1페이지를 다시 불러온다.
func ClearFilterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		if err := sess.Coordinator.ClearFilter(c.Request.Context()); err != nil && !isNavigationError(err) {
			flash(c, dto.FlashError, userMessage(err, msgLoadPostsFailed))
		}
		redirect(c, "/posts")
	}
}

// PreviewPostHandler 는 상세 미리보기 페이지를 그린다. 실패 시 재시도 없이 종료 메시지만 보여준다.
func PreviewPostHandler(svc *services.PreviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		id, ok := parseID(c.Param("id"))
		if !ok {
			render(c, http.StatusNotFound, "preview.tmpl", NavAllPosts, gin.H{
				"Preview":    dto.Preview{Failed: true},
				"FailedText": services.PreviewFailedText,
			})
			return
		}

		preview, err := svc.Render(c.Request.Context(), sess.Cache, sess.Coordinator, id)
		status := http.StatusOK
		if err != nil {
			status = statusFor(err)
		}
		render(c, status, "preview.tmpl", NavAllPosts, gin.H{
			"Preview":    preview,
			"FailedText": services.PreviewFailedText,
		})
	}
}

// DeletePostHandler 는 게시글을 삭제하고 성공 시 보이는 목록에서만 제거한다. (재조회 없음)
func DeletePostHandler(writer services.PostWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		id, ok := parseID(c.Param("id"))
		if !ok {
			flash(c, dto.FlashError, msgDeleteFailed)
			redirect(c, "/posts")
			return
		}

		if err := writer.DeletePost(c.Request.Context(), id); err != nil {
			logger.ErrorWithFields("delete post failed", logger.Fields{
				"post_id": id,
				"error":   err.Error(),
			})
			flash(c, dto.FlashError, userMessage(err, msgDeleteFailed))
			redirect(c, "/posts")
			return
		}

		sess.Coordinator.Remove(id)
		sess.Cache.Evict(id)
		sess.ForgetComposer(strconv.FormatInt(id, 10))
		flash(c, dto.FlashSuccess, msgPostDeleted)
		redirect(c, "/posts")
	}
}

// DownloadVideoHandler 는 게시글의 비디오를 첨부 파일로 내려준다.
func DownloadVideoHandler(fetcher AssetFetcher, assetBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		ctx := c.Request.Context()
		id, ok := parseID(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not found"})
			return
		}

		detail, err := sess.Cache.Get(ctx, id)
		if err != nil || detail.FeaturedVideo == "" {
			flash(c, dto.FlashError, msgVideoFetchFailed)
			redirect(c, "/posts")
			return
		}

		asset, err := fetcher.FetchAsset(ctx, services.AssetURL(assetBaseURL, detail.FeaturedVideo))
		if err != nil {
			logger.ErrorWithFields("video download failed", logger.Fields{
				"post_id": id,
				"error":   err.Error(),
			})
			flash(c, dto.FlashError, msgVideoDownloadFail)
			redirect(c, "/posts")
			return
		}
		defer asset.Body.Close()

		contentType := asset.ContentType
		if contentType == "" {
			contentType = "video/mp4"
		}
		c.DataFromReader(http.StatusOK, asset.ContentLength, contentType, asset.Body, map[string]string{
			"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, services.VideoDownloadName(detail.Title)),
		})
	}
}
