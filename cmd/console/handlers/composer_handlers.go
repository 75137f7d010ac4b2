package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/console/middleware"
	"blog-console/cmd/console/services"
	"blog-console/cmd/internal/logger"
)

const (
	msgFetchPostFailed  = "Failed to fetch post data"
	msgVideoUploading   = "Video is uploading..."
	msgVideoUploaded    = "Video uploaded successfully!"
	msgSelectVideo      = "Please select a video first!"
	msgUploadTargetFail = "Failed to get pre-signed URL"
	msgUploadFailed     = "Upload failed"
	msgUploadGeneric    = "Something went wrong during upload"
	msgImageTooLarge    = "Image is too large"
	msgVideoTooLarge    = "Video is too large"
	msgFormReadFailed   = "Failed to read the submitted form"
)

// ComposerOptions 는 작성 폼 핸들러 공통 설정이다.
type ComposerOptions struct {
	AssetBaseURL   string
	MaxImageBytes  int64
	MaxUploadBytes int64
}

// parseComposerForm 는 본문을 한 번에 파싱한다. 실패하면 초안을 건드리지 않도록
// 호출자가 바로 돌아가야 한다. 일반 urlencoded 폼은 정상으로 본다.
func parseComposerForm(c *gin.Context) error {
	if _, err := c.MultipartForm(); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func composerPath(key string) string {
	if key == services.NewDraftKey {
		return "/posts/create"
	}
	return "/posts/update/" + key
}

// composerFor 는 :key 에 해당하는 세션 초안을 찾는다. 편집 초안이 아직 없으면
// 편집 폼으로 돌려보내고 false 를 반환한다.
func composerFor(c *gin.Context) (*services.Composer, string, bool) {
	sess := middleware.SessionFrom(c)
	key := c.Param("key")
	if key == services.NewDraftKey {
		comp, _ := sess.Composer(key)
		return comp, key, true
	}
	if _, ok := parseID(key); !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not found"})
		return nil, key, false
	}
	comp, ok := sess.LookupComposer(key)
	if !ok {
		redirect(c, composerPath(key))
		return nil, key, false
	}
	return comp, key, true
}

// NewPostFormHandler 는 새 글 작성 폼을 그린다. 세션의 "new" 초안을 이어서 편집한다.
func NewPostFormHandler(opts ComposerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		comp, _ := sess.Composer(services.NewDraftKey)
		syncCategories(c, sess, comp)
		render(c, http.StatusOK, "composer.tmpl", NavAddPost, gin.H{
			"Form": buildComposerPage(services.NewDraftKey, comp, opts.AssetBaseURL),
		})
	}
}

// EditPostFormHandler 는 기존 글 편집 폼을 그린다. 초안이 없을 때만 상세를 불러온다.
func EditPostFormHandler(opts ComposerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		id, ok := parseID(c.Param("id"))
		if !ok {
			flash(c, dto.FlashError, msgFetchPostFailed)
			redirect(c, "/posts")
			return
		}
		key := strconv.FormatInt(id, 10)

		comp, created := sess.Composer(key)
		if created {
			if err := comp.LoadForEdit(c.Request.Context(), id); err != nil {
				sess.ForgetComposer(key)
				flash(c, dto.FlashError, msgFetchPostFailed)
				render(c, statusFor(err), "composer.tmpl", "", gin.H{"LoadFailed": true})
				return
			}
		}
		syncCategories(c, sess, comp)
		render(c, http.StatusOK, "composer.tmpl", "", gin.H{
			"Form": buildComposerPage(key, comp, opts.AssetBaseURL),
		})
	}
}

func syncCategories(c *gin.Context, sess *services.Session, comp *services.Composer) {
	if err := sess.Coordinator.LoadCategories(c.Request.Context()); err != nil {
		flash(c, dto.FlashError, userMessage(err, "Something went wrong!"))
	}
	comp.SetAvailableCategories(sess.Coordinator.Categories())
}

func buildComposerPage(key string, comp *services.Composer, assetBaseURL string) dto.ComposerPage {
	draft := comp.Draft()
	page := dto.ComposerPage{
		Key:       key,
		Action:    "/posts/compose/" + key,
		IsEdit:    comp.IsEdit(),
		Heading:   "Add Post",
		Title:     draft.Title,
		Body:      draft.Body,
		Tags:      services.TagBadges(draft.Tags.Items()),
		VideoKey:  draft.VideoKey,
		Uploading: comp.Uploading(),
	}
	if page.IsEdit {
		page.Heading = "Edit Post"
	}

	for _, cat := range comp.AvailableCategories() {
		page.Categories = append(page.Categories, dto.CategoryOption{
			ID:       cat.ID,
			Name:     cat.Name,
			Selected: slices.Contains(draft.Categories, cat.ID),
		})
	}

	switch {
	case draft.Image.File != nil:
		page.ImageURL = "/posts/compose/" + key + "/image"
		page.PendingImageName = draft.Image.File.Name
	case draft.Image.URL != "":
		page.ImageURL = services.AssetURL(assetBaseURL, draft.Image.URL)
	}

	if draft.VideoURL != "" {
		page.VideoURL = draft.VideoURL
	} else if draft.VideoKey != "" {
		page.VideoURL = services.AssetURL(assetBaseURL, draft.VideoKey)
	}
	return page
}

// SaveDraftHandler 는 제목/본문/이미지 입력을 초안에 반영하고, action=publish 이면 제출한다.
func SaveDraftHandler(opts ComposerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.MaxImageBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxImageBytes)
		}
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}

		if err := parseComposerForm(c); err != nil {
			logger.WarnWithFields("draft form rejected", logger.Fields{"key": key, "error": err.Error()})
			if isTooLarge(err) {
				flash(c, dto.FlashError, msgImageTooLarge)
			} else {
				flash(c, dto.FlashError, msgFormReadFailed)
			}
			redirect(c, composerPath(key))
			return
		}

		if title, ok := c.GetPostForm("title"); ok {
			comp.SetTitle(title)
		}
		if body, ok := c.GetPostForm("body"); ok {
			comp.SetBody(body)
		}

		switch {
		case c.PostForm("clear_image") == "1":
			comp.ClearImage()
		default:
			if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
				if file, err := readLocalFile(fh); err == nil {
					comp.SetImageFile(file)
				} else {
					logger.WarnWithFields("draft image read failed", logger.Fields{"error": err.Error()})
				}
			} else if u := strings.TrimSpace(c.PostForm("image_url")); u != "" && u != comp.Draft().Image.URL {
				comp.SetImageURL(u)
			}
		}

		if c.PostForm("action") != "publish" {
			redirect(c, composerPath(key))
			return
		}

		_, err := comp.Submit(c.Request.Context())
		switch {
		case err == nil && comp.IsEdit():
			flash(c, dto.FlashSuccess, services.PostUpdatedMessage)
		case err == nil:
			flash(c, dto.FlashSuccess, services.PostCreatedMessage)
		case errors.Is(err, services.ErrUploadInProgress):
			flash(c, dto.FlashError, msgVideoUploading)
		default:
			flash(c, dto.FlashError, userMessage(err, services.PostSaveFailMessage))
		}
		redirect(c, composerPath(key))
	}
}

func readLocalFile(fh *multipart.FileHeader) (*services.LocalFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.LocalFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// AddTagHandler 는 태그 하나를 추가한다. 빈 값이나 중복은 무시한다.
func AddTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}
		comp.AddTag(c.PostForm("tag"))
		redirect(c, composerPath(key))
	}
}

func RemoveTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}
		comp.RemoveTag(c.PostForm("tag"))
		redirect(c, composerPath(key))
	}
}

func ToggleCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}
		if id, ok := parseID(c.Param("cid")); ok {
			comp.ToggleCategory(id)
		}
		redirect(c, composerPath(key))
	}
}

// RemoveCategoryHandler 는 선택 해제와 함께 이 세션의 선택지에서도 카테고리를 숨긴다.
func RemoveCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}
		if id, ok := parseID(c.Param("cid")); ok {
			comp.RemoveCategory(id)
		}
		redirect(c, composerPath(key))
	}
}

// UploadVideoHandler 는 선택한 비디오를 서명된 URL 로 올리고 초안에 붙인다.
func UploadVideoHandler(up *services.Uploader, opts ComposerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxUploadBytes)
		}
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}

		if err := parseComposerForm(c); err != nil {
			logger.WarnWithFields("video form rejected", logger.Fields{"key": key, "error": err.Error()})
			if isTooLarge(err) {
				flash(c, dto.FlashError, msgVideoTooLarge)
			} else {
				flash(c, dto.FlashError, msgUploadGeneric)
			}
			redirect(c, composerPath(key))
			return
		}

		var file *services.UploadFile
		if fh, err := c.FormFile("video"); err == nil {
			f, err := fh.Open()
			if err == nil {
				defer f.Close()
				file = &services.UploadFile{
					Name:        fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					Body:        f,
				}
			}
		}

		_, err := up.Upload(c.Request.Context(), file, comp.VideoUploadListener())
		switch {
		case err == nil:
			flash(c, dto.FlashSuccess, msgVideoUploaded)
		case errors.Is(err, services.ErrNoFile):
			flash(c, dto.FlashError, msgSelectVideo)
		case errors.Is(err, services.ErrUploadTarget):
			flash(c, dto.FlashError, msgUploadTargetFail)
		case errors.Is(err, services.ErrUploadFailed):
			flash(c, dto.FlashError, msgUploadFailed)
		default:
			flash(c, dto.FlashError, msgUploadGeneric)
		}
		redirect(c, composerPath(key))
	}
}

func RemoveVideoHandler(up *services.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, key, ok := composerFor(c)
		if !ok {
			return
		}
		up.Remove(comp.VideoUploadListener())
		redirect(c, composerPath(key))
	}
}

// DraftImageHandler 는 아직 전송하지 않은 대표 이미지를 미리보기용으로 돌려준다.
func DraftImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.SessionFrom(c)
		comp, ok := sess.LookupComposer(c.Param("key"))
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		img := comp.Draft().Image.File
		if img == nil {
			c.Status(http.StatusNotFound)
			return
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}
		c.Data(http.StatusOK, contentType, img.Data)
	}
}
