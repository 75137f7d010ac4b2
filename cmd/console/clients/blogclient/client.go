package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blog-console/cmd/console/httpclient"
)

// Client는 원격 블로그 REST API 를 호출하는 얇은 클라이언트다.
//
//   - 콘솔의 상태 관리(목록/필터/캐시)는 전혀 알지 않고, 순수하게 API 호출과 wire 타입만 다룬다.
//   - 서명된 URL 로의 업로드/다운로드는 타임아웃 없는 별도 http.Client(transfer)를 사용한다.
//
// baseURL 예: http://blog_api:8000
type Client struct {
	base     *httpclient.BaseClient
	transfer *httpclient.BaseClient
}

var ErrNotFound = errors.New("resource not found")

// APIError 는 2xx 가 아닌 응답을 표현한다. Message 는 응답 바디의 message/detail 필드에서 뽑는다.
type APIError struct {
	Op      string
	Status  int
	Body    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blog-api %s: status=%d body=%s", e.Op, e.Status, e.Body)
}

// Options 는 Client 생성 옵션이다.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// HTTPClient 가 주어지면 API 호출과 전송 모두 이 클라이언트를 사용한다. (테스트용)
	HTTPClient *http.Client
}

func New(opts Options) *Client {
	apiHTTP := opts.HTTPClient
	transferHTTP := opts.HTTPClient
	if apiHTTP == nil {
		apiHTTP = httpclient.New(httpclient.Config{Timeout: opts.Timeout})
		transferHTTP = httpclient.NewStreaming()
	}

	base := httpclient.NewBaseClientWithClient(apiHTTP, opts.BaseURL)
	base.Token = opts.Token
	return &Client{
		base:     base,
		transfer: httpclient.NewBaseClientWithClient(transferHTTP, opts.BaseURL),
	}
}

// -------------------- Wire types --------------------

type CategoryItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PostItem struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Categories    []CategoryItem `json:"categories"`
	Tags          []string       `json:"tags"`
	FeaturedImage string         `json:"featured_image"`
	FeaturedVideo string         `json:"featured_video"`
}

type ListPostsResponse struct {
	Count   int        `json:"count"`
	Results []PostItem `json:"results"`
}

type FilterParams struct {
	Search   string
	Category int64
	Tags     []string
}

// FormFile 은 multipart 로 전송할 로컬 파일이다.
type FormFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PostForm 은 생성/수정 시 전송하는 multipart 페이로드다.
// FeaturedImage 와 FeaturedImageURL 은 동시에 채워지지 않는다.
type PostForm struct {
	Title            string
	Body             string
	Tags             []string
	Categories       []int64
	FeaturedVideo    string
	FeaturedImageURL string
	FeaturedImage    *FormFile
}

// -------------------- Posts --------------------

// ListPosts는 GET /api/posts/?page=&page_size= 를 호출한다.
func (c *Client) ListPosts(ctx context.Context, page, pageSize int) (ListPostsResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/api/posts/", q, nil)
	if err != nil {
		return ListPostsResponse{}, err
	}

	var out ListPostsResponse
	if err := c.do(req, "ListPosts", &out); err != nil {
		return ListPostsResponse{}, err
	}
	return out, nil
}

// FilterPosts는 GET /api/posts/filter/ 를 page/page_size 없이 호출해 매칭되는 전체 결과를 받는다.
// API 는 배열 또는 {"results": [...]} 를 돌려줄 수 있으므로 둘 다 허용한다.
func (c *Client) FilterPosts(ctx context.Context, params FilterParams) ([]PostItem, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Category > 0 {
		q.Set("category", strconv.FormatInt(params.Category, 10))
	}
	for _, tag := range params.Tags {
		q.Add("tags", tag)
	}
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/api/posts/filter/", q, nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(req, "FilterPosts", &raw); err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

func decodeResults(raw json.RawMessage) ([]PostItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []PostItem{}, nil
	}
	if trimmed[0] == '[' {
		var items []PostItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapped struct {
		Results []PostItem `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Results == nil {
		return []PostItem{}, nil
	}
	return wrapped.Results, nil
}

// GetPost는 단일 포스트(본문 포함)를 조회한다.
// 존재하지 않으면 ErrNotFound 를 반환한다.
func (c *Client) GetPost(ctx context.Context, id int64) (PostItem, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, postPath(id), nil, nil)
	if err != nil {
		return PostItem{}, err
	}

	var out PostItem
	if err := c.do(req, "GetPost", &out); err != nil {
		return PostItem{}, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, form PostForm) (PostItem, error) {
	return c.sendPost(ctx, http.MethodPost, "/api/posts/", "CreatePost", form)
}

func (c *Client) UpdatePost(ctx context.Context, id int64, form PostForm) (PostItem, error) {
	return c.sendPost(ctx, http.MethodPut, postPath(id), "UpdatePost", form)
}

func (c *Client) sendPost(ctx context.Context, method, relPath, op string, form PostForm) (PostItem, error) {
	body, contentType, err := encodePostForm(form)
	if err != nil {
		return PostItem{}, err
	}
	req, err := c.base.NewRequest(ctx, method, relPath, nil, body)
	if err != nil {
		return PostItem{}, err
	}
	req.Header.Set("Content-Type", contentType)

	var out PostItem
	if err := c.do(req, op, &out); err != nil {
		return PostItem{}, err
	}
	return out, nil
}

func encodePostForm(form PostForm) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"title", form.Title},
		{"body", form.Body},
		{"featured_video", form.FeaturedVideo},
	}
	for _, tag := range form.Tags {
		fields = append(fields, [2]string{"tags", tag})
	}
	for _, id := range form.Categories {
		fields = append(fields, [2]string{"categories", strconv.FormatInt(id, 10)})
	}
	if form.FeaturedImage == nil && form.FeaturedImageURL != "" {
		fields = append(fields, [2]string{"featured_image_url", form.FeaturedImageURL})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if img := form.FeaturedImage; img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="featured_image"; filename="%s"`, escapeQuotes(img.Name)))
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// DeletePost는 DELETE /api/posts/{id}/ 를 호출한다. 2xx 면 성공으로 본다.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	req, err := c.base.NewRequest(ctx, http.MethodDelete, postPath(id), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, "DeletePost", nil)
}

// -------------------- Categories --------------------

func (c *Client) ListCategories(ctx context.Context) ([]CategoryItem, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/api/categories/", nil, nil)
	if err != nil {
		return nil, err
	}

	var out []CategoryItem
	if err := c.do(req, "ListCategories", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []CategoryItem{}
	}
	return out, nil
}

// -------------------- Uploads --------------------

// RequestUploadTarget는 POST /api/posts/video-presigned-url/ 를 호출해 서명된 PUT URL 을 받는다.
func (c *Client) RequestUploadTarget(ctx context.Context, fileName, contentType string) (string, error) {
	payload, err := json.Marshal(struct {
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
	}{FileName: fileName, FileType: contentType})
	if err != nil {
		return "", err
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, "/api/posts/video-presigned-url/", nil, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		URL          string `json:"url"`
		PresignedURL string `json:"presigned_url"`
	}
	if err := c.do(req, "RequestUploadTarget", &out); err != nil {
		return "", err
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return out.PresignedURL, nil
}

// PutObject는 서명된 URL 로 바이트를 그대로 PUT 한다. 2xx 가 아니면 에러다.
func (c *Client) PutObject(ctx context.Context, signedURL, contentType string, body io.Reader, size int64) error {
	req, err := c.transfer.NewAbsoluteRequest(ctx, http.MethodPut, signedURL, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if size > 0 {
		req.ContentLength = size
	}

	return c.doTransfer(req, "PutObject", nil)
}

// Asset 은 스트리밍 중인 원격 에셋이다. 호출자가 Body 를 닫아야 한다.
type Asset struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// FetchAsset은 에셋 URL 을 GET 하고 바디를 닫지 않은 채로 돌려준다.
func (c *Client) FetchAsset(ctx context.Context, assetURL string) (*Asset, error) {
	req, err := c.transfer.NewAbsoluteRequest(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.transfer.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError("FetchAsset", resp)
	}
	return &Asset{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// Ping 은 카테고리 목록을 조회해 API 가 응답하는지 확인한다.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListCategories(ctx)
	return err
}

// -------------------- helpers --------------------

func postPath(id int64) string {
	return "/api/posts/" + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	return handleResponse(resp, op, out)
}

func (c *Client) doTransfer(req *http.Request, op string, out any) error {
	resp, err := c.transfer.Do(req)
	if err != nil {
		return err
	}
	return handleResponse(resp, op, out)
}

func handleResponse(resp *http.Response, op string, out any) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newAPIError(op, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("blog-api %s: decode response: %w", op, err)
	}
	return nil
}

func newAPIError(op string, resp *http.Response) *APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	apiErr := &APIError{Op: op, Status: resp.StatusCode, Body: string(b)}

	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(b, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Detail
		}
	}
	return apiErr
}
