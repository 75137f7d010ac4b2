package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"blog-console/cmd/internal/logger"
)

var (
	ErrNoFile       = errors.New("please select a video first")
	ErrUploadTarget = errors.New("failed to get pre-signed URL")
	ErrUploadFailed = errors.New("upload failed")
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// SanitizeFileName replaces whitespace runs with "_" and drops every character
// outside [A-Za-z0-9_.-]. A name left without a stem becomes "video" plus the
// remaining extension.
func SanitizeFileName(name string) string {
	out := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	out = unsafeFileChars.ReplaceAllString(out, "")

	ext := path.Ext(out)
	if strings.TrimSuffix(out, ext) == "" {
		return "video" + ext
	}
	return out
}

// UploadFile is a file picked in the composer.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadListener receives the lifecycle of one upload attempt.
// OnSuccess with an empty ref means the video was removed.
type UploadListener interface {
	OnStart()
	OnSuccess(ref string)
	OnError()
}

// ListenerFuncs adapts plain functions to UploadListener. Nil fields are skipped.
type ListenerFuncs struct {
	Start   func()
	Success func(ref string)
	Error   func()
}

func (l ListenerFuncs) OnStart() {
	if l.Start != nil {
		l.Start()
	}
}

func (l ListenerFuncs) OnSuccess(ref string) {
	if l.Success != nil {
		l.Success(ref)
	}
}

func (l ListenerFuncs) OnError() {
	if l.Error != nil {
		l.Error()
	}
}

// Uploader performs the two-step signed upload: request a target, then PUT the
// bytes straight to it.
type Uploader struct {
	issuer UploadTargetIssuer
	putter ObjectPutter
}

func NewUploader(issuer UploadTargetIssuer, putter ObjectPutter) *Uploader {
	return &Uploader{issuer: issuer, putter: putter}
}

// Upload sends file and returns the final reference (the signed URL without
// its query). Failures are terminal for the attempt.
func (u *Uploader) Upload(ctx context.Context, file *UploadFile, listener UploadListener) (string, error) {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	if file == nil || file.Body == nil || file.Size == 0 {
		return "", ErrNoFile
	}

	listener.OnStart()

	name := SanitizeFileName(file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	signedURL, err := u.issuer.RequestUploadTarget(ctx, name, contentType)
	if err != nil {
		listener.OnError()
		logger.ErrorWithFields("upload target request failed", logger.Fields{
			"file_name": name,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrUploadTarget, err)
	}

	if err := u.putter.PutObject(ctx, signedURL, contentType, file.Body, file.Size); err != nil {
		listener.OnError()
		logger.ErrorWithFields("upload put failed", logger.Fields{
			"file_name": name,
			"size":      file.Size,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	ref := stripQuery(signedURL)
	logger.InfoWithFields("upload completed", logger.Fields{
		"file_name": name,
		"size":      file.Size,
		"ref":       ref,
	})
	listener.OnSuccess(ref)
	return ref, nil
}

// Remove reports an explicit removal to the listener.
func (u *Uploader) Remove(listener UploadListener) {
	if listener != nil {
		listener.OnSuccess("")
	}
}

// VideoDownloadName is the attachment name offered for a post's video.
func VideoDownloadName(title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, `"`, ""))
	if title == "" {
		return "featured_video.mp4"
	}
	return whitespaceRun.ReplaceAllString(title, "_") + ".mp4"
}
