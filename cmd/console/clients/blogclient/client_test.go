package blogclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Token: "tkn"}), srv
}

func TestListPostsSendsPaginationAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"count":41,"results":[{"id":7,"title":"Hello","updated_at":"2024-05-01T10:00:00Z","categories":[{"id":1,"name":"Go"}],"tags":["a"],"featured_image":null}]}`)
	})

	resp, err := c.ListPosts(context.Background(), 2, 20)
	require.NoError(t, err)

	assert.Equal(t, 41, resp.Count)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(7), resp.Results[0].ID)
	assert.Equal(t, "Go", resp.Results[0].Categories[0].Name)
	assert.Empty(t, resp.Results[0].FeaturedImage)
}

func TestFilterPostsAcceptsArrayAndWrappedResults(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`},
		{name: "wrapped results", body: `{"results":[{"id":1},{"id":2}]}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/posts/filter/", r.URL.Path)
				assert.Equal(t, "golang", r.URL.Query().Get("search"))
				assert.Equal(t, "3", r.URL.Query().Get("category"))
				assert.Equal(t, []string{"golang"}, r.URL.Query()["tags"])
				assert.Empty(t, r.URL.Query().Get("page"))
				_, _ = io.WriteString(w, testCase.body)
			})

			items, err := c.FilterPosts(context.Background(), FilterParams{Search: "golang", Category: 3, Tags: []string{"golang"}})
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, int64(2), items[1].ID)
		})
	}
}

func TestGetPostNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/99/", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetPost(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"title too long"}`)
	})

	err := c.DeletePost(context.Background(), 5)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "title too long", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "status=400")
}

func TestDeletePostAcceptsNoContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeletePost(context.Background(), 5))
}

func TestCreatePostSendsMultipartForm(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Hello", r.FormValue("title"))
		assert.Equal(t, "<p>World</p>", r.FormValue("body"))
		assert.Equal(t, []string{"go", "web"}, r.MultipartForm.Value["tags"])
		assert.Equal(t, []string{"1", "4"}, r.MultipartForm.Value["categories"])
		assert.Equal(t, "videos/a.mp4", r.FormValue("featured_video"))
		assert.Empty(t, r.MultipartForm.Value["featured_image_url"])

		files := r.MultipartForm.File["featured_image"]
		require.Len(t, files, 1)
		assert.Equal(t, "cover.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(PostItem{ID: 12, Title: "Hello"})
	})

	out, err := c.CreatePost(context.Background(), PostForm{
		Title:         "Hello",
		Body:          "<p>World</p>",
		Tags:          []string{"go", "web"},
		Categories:    []int64{1, 4},
		FeaturedVideo: "videos/a.mp4",
		FeaturedImage: &FormFile{Name: "cover.png", ContentType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.ID)
}

func TestUpdatePostSendsImageURL(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/posts/12/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://cdn.example.com/cover.png", r.FormValue("featured_image_url"))
		_ = json.NewEncoder(w).Encode(PostItem{ID: 12})
	})

	_, err := c.UpdatePost(context.Background(), 12, PostForm{Title: "t", Body: "b", FeaturedImageURL: "https://cdn.example.com/cover.png"})
	assert.NoError(t, err)
}

func TestRequestUploadTargetAndPutObject(t *testing.T) {
	var putContentType, putBody string
	var srvURL string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/video-presigned-url/":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "clip.mov", in["file_name"])
			assert.Equal(t, "video/quicktime", in["file_type"])
			_ = json.NewEncoder(w).Encode(map[string]string{"url": srvURL + "/bucket/clip.mov?X-Amz-Signature=abc"})
		case "/bucket/clip.mov":
			assert.Empty(t, r.Header.Get("Authorization"))
			putContentType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			putBody = string(b)
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	srvURL = srv.URL

	signed, err := c.RequestUploadTarget(context.Background(), "clip.mov", "video/quicktime")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(signed, "?X-Amz-Signature=abc"))

	require.NoError(t, c.PutObject(context.Background(), signed, "video/quicktime", strings.NewReader("bytes"), 5))
	assert.Equal(t, "video/quicktime", putContentType)
	assert.Equal(t, "bytes", putBody)
}

func TestPutObjectRejectedByStore(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.PutObject(context.Background(), srv.URL+"/bucket/x.mp4?sig=1", "video/mp4", strings.NewReader("x"), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestFetchAssetStreamsBody(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "video-bytes")
	})

	asset, err := c.FetchAsset(context.Background(), srv.URL+"/videos/a.mp4")
	require.NoError(t, err)
	defer asset.Body.Close()

	b, err := io.ReadAll(asset.Body)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(b))
	assert.Equal(t, "video/mp4", asset.ContentType)
}
