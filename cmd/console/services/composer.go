package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/dto"
	"blog-console/cmd/internal/logger"
)

const (
	ValidationMessage   = "Title, content and at least one category are required!"
	PostCreatedMessage  = "Post created successfully!"
	PostUpdatedMessage  = "Post updated successfully!"
	PostSaveFailMessage = "Failed to save post"
)

var ErrUploadInProgress = errors.New("video upload is still in progress")

// ValidationError is returned by Submit before any network call when the draft
// is incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LocalFile is a picked image that has not been sent yet.
type LocalFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageSource is either a pending local file or a remote URL, never both.
type ImageSource struct {
	File *LocalFile
	URL  string
}

func (s ImageSource) IsEmpty() bool { return s.File == nil && s.URL == "" }

// TagSet keeps tags in insertion order without duplicates.
type TagSet struct {
	items []string
}

func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add trims tag and appends it. Empty and duplicate tags are ignored.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(s.items, tag) {
		return false
	}
	s.items = append(s.items, tag)
	return true
}

func (s *TagSet) Remove(tag string) {
	s.items = slices.DeleteFunc(s.items, func(t string) bool { return t == tag })
}

func (s TagSet) Items() []string { return append([]string{}, s.items...) }

func (s TagSet) Len() int { return len(s.items) }

// Draft is the editable state of one post.
type Draft struct {
	Title      string
	Body       string
	Tags       TagSet
	Categories []int64
	Image      ImageSource
	// VideoKey is the storage key sent as featured_video.
	VideoKey string
	// VideoURL is the playable URL of the attached video, for display only.
	VideoURL string
}

func (d Draft) clone() Draft {
	out := d
	out.Tags = TagSet{items: d.Tags.Items()}
	out.Categories = append([]int64{}, d.Categories...)
	if d.Image.File != nil {
		f := *d.Image.File
		out.Image.File = &f
	}
	return out
}

type ComposerOptions struct {
	// Bucket is stripped from video URLs when mapping them to storage keys.
	Bucket string
}

// Composer holds the draft of a create (id 0) or edit (id > 0) session.
type Composer struct {
	writer PostWriter
	cache  *DetailCache
	bucket string

	mu        sync.Mutex
	id        int64
	draft     Draft
	available []dto.Category
	removed   map[int64]bool
	uploading bool
}

func NewComposer(writer PostWriter, cache *DetailCache, opts ComposerOptions) *Composer {
	return &Composer{
		writer:  writer,
		cache:   cache,
		bucket:  opts.Bucket,
		removed: make(map[int64]bool),
	}
}

// LoadForEdit switches the composer to edit mode and fills the draft from the
// shared detail cache.
func (c *Composer) LoadForEdit(ctx context.Context, id int64) error {
	detail, err := c.cache.Get(ctx, id)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(detail.Categories))
	for _, cat := range detail.Categories {
		ids = append(ids, cat.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	c.draft = Draft{
		Title:      detail.Title,
		Body:       detail.Body,
		Tags:       NewTagSet(detail.Tags...),
		Categories: ids,
		Image:      ImageSource{URL: detail.FeaturedImage},
		VideoKey:   StorageKeyFromURL(detail.FeaturedVideo, c.bucket),
		VideoURL:   detail.FeaturedVideo,
	}
	return nil
}

func (c *Composer) ID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Composer) IsEdit() bool { return c.ID() > 0 }

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

func (c *Composer) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Title = title
}

func (c *Composer) SetBody(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Body = body
}

func (c *Composer) AddTag(tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Tags.Add(tag)
}

func (c *Composer) RemoveTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Tags.Remove(tag)
}

// ToggleCategory selects or deselects id and reports whether it is now selected.
func (c *Composer) ToggleCategory(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.draft.Categories, id) {
		c.draft.Categories = slices.DeleteFunc(c.draft.Categories, func(v int64) bool { return v == id })
		return false
	}
	c.draft.Categories = append(c.draft.Categories, id)
	return true
}

// RemoveCategory deselects id and hides it from the available list for the
// rest of the session.
func (c *Composer) RemoveCategory(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Categories = slices.DeleteFunc(c.draft.Categories, func(v int64) bool { return v == id })
	c.removed[id] = true
}

// SetAvailableCategories stores the vocabulary offered by the form.
func (c *Composer) SetAvailableCategories(cats []dto.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = append([]dto.Category(nil), cats...)
}

// AvailableCategories is the vocabulary minus removed entries.
func (c *Composer) AvailableCategories() []dto.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dto.Category, 0, len(c.available))
	for _, cat := range c.available {
		if !c.removed[cat.ID] {
			out = append(out, cat)
		}
	}
	return out
}

func (c *Composer) SetImageFile(f *LocalFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f == nil {
		c.draft.Image = ImageSource{}
		return
	}
	c.draft.Image = ImageSource{File: f}
}

func (c *Composer) SetImageURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = ImageSource{URL: strings.TrimSpace(url)}
}

func (c *Composer) ClearImage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = ImageSource{}
}

// BeginVideoUpload blocks Submit until AttachVideo or AbortVideoUpload.
func (c *Composer) BeginVideoUpload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = true
}

// AttachVideo stores the uploaded video reference. An empty ref clears the video.
func (c *Composer) AttachVideo(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false
	c.draft.VideoURL = ref
	c.draft.VideoKey = StorageKeyFromURL(ref, c.bucket)
}

func (c *Composer) AbortVideoUpload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false
}

func (c *Composer) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// VideoUploadListener wires an Uploader to this composer.
func (c *Composer) VideoUploadListener() UploadListener {
	return ListenerFuncs{
		Start:   c.BeginVideoUpload,
		Success: c.AttachVideo,
		Error:   c.AbortVideoUpload,
	}
}

// Validate checks the draft without touching the network.
func (c *Composer) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Composer) validateLocked() error {
	if c.uploading {
		return ErrUploadInProgress
	}
	if strings.TrimSpace(c.draft.Title) == "" || !BodyHasContent(c.draft.Body) || len(c.draft.Categories) == 0 {
		return &ValidationError{Message: ValidationMessage}
	}
	return nil
}

// Submit creates or updates the post. After a create the draft is reset; after
// an edit it is kept as-is. The cached detail of an edited post is evicted.
func (c *Composer) Submit(ctx context.Context) (dto.PostDetail, error) {
	c.mu.Lock()
	if err := c.validateLocked(); err != nil {
		c.mu.Unlock()
		return dto.PostDetail{}, err
	}
	id := c.id
	form := buildPostForm(c.draft)
	c.mu.Unlock()

	var (
		saved dto.PostDetail
		err   error
	)
	if id > 0 {
		saved, err = c.writer.UpdatePost(ctx, id, form)
	} else {
		saved, err = c.writer.CreatePost(ctx, form)
	}
	if err != nil {
		logger.ErrorWithFields("post submit failed", logger.Fields{
			"post_id": id,
			"error":   err.Error(),
		})
		return dto.PostDetail{}, fmt.Errorf("submit post: %w", err)
	}

	if id > 0 {
		if c.cache != nil {
			c.cache.Evict(id)
		}
		logger.InfoWithFields("post updated", logger.Fields{"post_id": id})
		return saved, nil
	}

	c.mu.Lock()
	c.draft = Draft{}
	c.mu.Unlock()
	logger.InfoWithFields("post created", logger.Fields{"post_id": saved.ID})
	return saved, nil
}

func buildPostForm(d Draft) blogclient.PostForm {
	form := blogclient.PostForm{
		Title:         d.Title,
		Body:          d.Body,
		Tags:          d.Tags.Items(),
		Categories:    append([]int64{}, d.Categories...),
		FeaturedVideo: d.VideoKey,
	}
	if d.Image.File != nil {
		form.FeaturedImage = &blogclient.FormFile{
			Name:        d.Image.File.Name,
			ContentType: d.Image.File.ContentType,
			Data:        d.Image.File.Data,
		}
	} else {
		form.FeaturedImageURL = d.Image.URL
	}
	return form
}
