package services

import (
	"context"
	"io"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/dto"
)

// PostLister is the listing side of the blog API used by the Coordinator.
type PostLister interface {
	ListPosts(ctx context.Context, page, pageSize int) (dto.PostPage, error)
	FilterPosts(ctx context.Context, criteria dto.FilterCriteria) ([]dto.PostSummary, error)
	ListCategories(ctx context.Context) ([]dto.Category, error)
}

// PostFetcher loads one full post.
type PostFetcher interface {
	GetPost(ctx context.Context, id int64) (dto.PostDetail, error)
}

// PostWriter submits and deletes posts.
type PostWriter interface {
	CreatePost(ctx context.Context, form blogclient.PostForm) (dto.PostDetail, error)
	UpdatePost(ctx context.Context, id int64, form blogclient.PostForm) (dto.PostDetail, error)
	DeletePost(ctx context.Context, id int64) error
}

// UploadTargetIssuer hands out a signed PUT URL for a sanitized file name.
type UploadTargetIssuer interface {
	RequestUploadTarget(ctx context.Context, fileName, contentType string) (string, error)
}

// ObjectPutter transfers bytes to a signed URL.
type ObjectPutter interface {
	PutObject(ctx context.Context, signedURL, contentType string, body io.Reader, size int64) error
}

// BlogAPI adapts blogclient.Client to the service interfaces and maps wire types
// into console DTOs.
type BlogAPI struct {
	client *blogclient.Client
}

func NewBlogAPI(client *blogclient.Client) *BlogAPI {
	return &BlogAPI{client: client}
}

func (a *BlogAPI) ListPosts(ctx context.Context, page, pageSize int) (dto.PostPage, error) {
	resp, err := a.client.ListPosts(ctx, page, pageSize)
	if err != nil {
		return dto.PostPage{}, err
	}
	return dto.PostPage{Results: mapSummaries(resp.Results), Count: resp.Count}, nil
}

// FilterPosts sends the search text also as a tag, so that a search matches tags too.
func (a *BlogAPI) FilterPosts(ctx context.Context, criteria dto.FilterCriteria) ([]dto.PostSummary, error) {
	c := criteria.Normalized()
	params := blogclient.FilterParams{Search: c.Search, Category: c.CategoryID}
	if c.Search != "" {
		params.Tags = []string{c.Search}
	}
	items, err := a.client.FilterPosts(ctx, params)
	if err != nil {
		return nil, err
	}
	return mapSummaries(items), nil
}

func (a *BlogAPI) ListCategories(ctx context.Context) ([]dto.Category, error) {
	items, err := a.client.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return mapCategories(items), nil
}

func (a *BlogAPI) GetPost(ctx context.Context, id int64) (dto.PostDetail, error) {
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return dto.PostDetail{}, err
	}
	return mapDetail(p), nil
}

func (a *BlogAPI) CreatePost(ctx context.Context, form blogclient.PostForm) (dto.PostDetail, error) {
	p, err := a.client.CreatePost(ctx, form)
	if err != nil {
		return dto.PostDetail{}, err
	}
	return mapDetail(p), nil
}

func (a *BlogAPI) UpdatePost(ctx context.Context, id int64, form blogclient.PostForm) (dto.PostDetail, error) {
	p, err := a.client.UpdatePost(ctx, id, form)
	if err != nil {
		return dto.PostDetail{}, err
	}
	return mapDetail(p), nil
}

func (a *BlogAPI) DeletePost(ctx context.Context, id int64) error {
	return a.client.DeletePost(ctx, id)
}

func (a *BlogAPI) RequestUploadTarget(ctx context.Context, fileName, contentType string) (string, error) {
	return a.client.RequestUploadTarget(ctx, fileName, contentType)
}

func (a *BlogAPI) PutObject(ctx context.Context, signedURL, contentType string, body io.Reader, size int64) error {
	return a.client.PutObject(ctx, signedURL, contentType, body, size)
}

func mapSummaries(items []blogclient.PostItem) []dto.PostSummary {
	out := make([]dto.PostSummary, 0, len(items))
	for _, p := range items {
		out = append(out, mapSummary(p))
	}
	return out
}

// mapSummary converts a wire PostItem into the console summary.
func mapSummary(p blogclient.PostItem) dto.PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.PostSummary{
		ID:            p.ID,
		Title:         p.Title,
		UpdatedAt:     p.UpdatedAt,
		Categories:    mapCategories(p.Categories),
		Tags:          append([]string(nil), tags...),
		FeaturedImage: p.FeaturedImage,
		FeaturedVideo: p.FeaturedVideo,
	}
}

func mapDetail(p blogclient.PostItem) dto.PostDetail {
	return dto.PostDetail{PostSummary: mapSummary(p), Body: p.Body}
}

func mapCategories(items []blogclient.CategoryItem) []dto.Category {
	out := make([]dto.Category, 0, len(items))
	for _, c := range items {
		out = append(out, dto.Category{ID: c.ID, Name: c.Name})
	}
	return out
}
