package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/dto"
)

// fakeAPI is an in-memory blog API used by the service tests.
type fakeAPI struct {
	mu         sync.Mutex
	corpus     []dto.PostSummary
	details    map[int64]dto.PostDetail
	categories []dto.Category

	listErr   error
	filterErr error
	getErr    error
	catErr    error
	writeErr  error

	// listGate, when set, is consulted before answering ListPosts for a page.
	listGate func(page int)
	// getGate, when set, blocks GetPost until it returns.
	getGate func(id int64)

	filterResult []dto.PostSummary

	listCalls   int
	filterCalls int
	catCalls    int
	getCalls    int
	createCalls int
	updateCalls int
	deleteCalls int

	lastFilter   dto.FilterCriteria
	lastForm     blogclient.PostForm
	lastUpdateID int64
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{details: map[int64]dto.PostDetail{}}
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		s := dto.PostSummary{
			ID:         int64(i),
			Title:      fmt.Sprintf("Post %d", i),
			UpdatedAt:  base.Add(time.Duration(i) * time.Hour),
			Categories: []dto.Category{{ID: 1, Name: "Go"}},
			Tags:       []string{"go"},
		}
		f.corpus = append(f.corpus, s)
		f.details[s.ID] = dto.PostDetail{PostSummary: s, Body: fmt.Sprintf("<p>Body %d</p>", i)}
	}
	f.categories = []dto.Category{{ID: 1, Name: "Go"}, {ID: 2, Name: "Web"}}
	return f
}

func (f *fakeAPI) ListPosts(ctx context.Context, page, pageSize int) (dto.PostPage, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	err := f.listErr
	f.mu.Unlock()

	if gate != nil {
		gate(page)
	}
	if err != nil {
		return dto.PostPage{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	start := (page - 1) * pageSize
	if start > len(f.corpus) {
		start = len(f.corpus)
	}
	end := start + pageSize
	if end > len(f.corpus) {
		end = len(f.corpus)
	}
	return dto.PostPage{Results: cloneSummaries(f.corpus[start:end]), Count: len(f.corpus)}, nil
}

func (f *fakeAPI) FilterPosts(ctx context.Context, criteria dto.FilterCriteria) ([]dto.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterCalls++
	f.lastFilter = criteria
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	return cloneSummaries(f.filterResult), nil
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]dto.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catCalls++
	if f.catErr != nil {
		return nil, f.catErr
	}
	return append([]dto.Category(nil), f.categories...), nil
}

func (f *fakeAPI) GetPost(ctx context.Context, id int64) (dto.PostDetail, error) {
	f.mu.Lock()
	f.getCalls++
	gate := f.getGate
	err := f.getErr
	f.mu.Unlock()

	if gate != nil {
		gate(id)
	}
	if err != nil {
		return dto.PostDetail{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[id]
	if !ok {
		return dto.PostDetail{}, blogclient.ErrNotFound
	}
	return d.Clone(), nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, form blogclient.PostForm) (dto.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastForm = form
	if f.writeErr != nil {
		return dto.PostDetail{}, f.writeErr
	}
	return dto.PostDetail{PostSummary: dto.PostSummary{ID: 1000, Title: form.Title}, Body: form.Body}, nil
}

func (f *fakeAPI) UpdatePost(ctx context.Context, id int64, form blogclient.PostForm) (dto.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastUpdateID = id
	f.lastForm = form
	if f.writeErr != nil {
		return dto.PostDetail{}, f.writeErr
	}
	return dto.PostDetail{PostSummary: dto.PostSummary{ID: id, Title: form.Title}, Body: form.Body}, nil
}

func (f *fakeAPI) DeletePost(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.writeErr
}

func (f *fakeAPI) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.filterCalls + f.catCalls + f.getCalls + f.createCalls + f.updateCalls + f.deleteCalls
}

// fakeStore records upload calls.
type fakeStore struct {
	mu          sync.Mutex
	signedURL   string
	issueErr    error
	putErr      error
	issuedNames []string
	issuedTypes []string
	putURL      string
	putType     string
	putBody     string
}

func (s *fakeStore) RequestUploadTarget(ctx context.Context, fileName, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedNames = append(s.issuedNames, fileName)
	s.issuedTypes = append(s.issuedTypes, contentType)
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return s.signedURL, nil
}

func (s *fakeStore) PutObject(ctx context.Context, signedURL, contentType string, body io.Reader, size int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putURL = signedURL
	s.putType = contentType
	s.putBody = string(b)
	return s.putErr
}
