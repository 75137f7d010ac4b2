package services

import (
	"context"
	"fmt"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/internal/logger"
)

const (
	DefaultSidebarSize = 5
	PreviewFailedText  = "Failed to load post."
)

type PreviewOptions struct {
	SidebarSize  int
	AssetBaseURL string
}

// PreviewService builds the routed detail page of a post from a session's
// DetailCache and Coordinator.
type PreviewService struct {
	sidebarSize  int
	assetBaseURL string
}

func NewPreviewService(opts PreviewOptions) *PreviewService {
	size := opts.SidebarSize
	if size <= 0 {
		size = DefaultSidebarSize
	}
	return &PreviewService{sidebarSize: size, assetBaseURL: opts.AssetBaseURL}
}

// Render loads the post through the cache. When the fetch fails the returned
// preview has Failed set and the error is returned alongside it.
func (s *PreviewService) Render(ctx context.Context, cache *DetailCache, coord *Coordinator, id int64) (dto.Preview, error) {
	detail, err := cache.Get(ctx, id)
	if err != nil {
		return dto.Preview{ID: id, Failed: true}, err
	}

	return dto.Preview{
		ID:         detail.ID,
		Title:      detail.DisplayTitle(),
		Categories: CategoryBadges(detail.Categories),
		Tags:       TagBadges(detail.Tags),
		Media:      SelectMedia(detail.PostSummary, s.assetBaseURL),
		Body:       SanitizeBody(detail.Body),
		Sidebar:    s.sidebar(ctx, coord, id),
	}, nil
}

// sidebar lists other visible posts of the session, loading page 1 when the
// coordinator has nothing yet.
func (s *PreviewService) sidebar(ctx context.Context, coord *Coordinator, current int64) []dto.SidebarLink {
	if coord == nil {
		return nil
	}
	if !coord.Loaded() {
		if err := coord.LoadPage(ctx, 1); err != nil {
			logger.WarnWithFields("preview sidebar load failed", logger.Fields{
				"post_id": current,
				"error":   err.Error(),
			})
			return nil
		}
	}

	links := make([]dto.SidebarLink, 0, s.sidebarSize)
	for _, p := range coord.View().Posts {
		if p.ID == current {
			continue
		}
		if len(links) == s.sidebarSize {
			break
		}
		links = append(links, dto.SidebarLink{Title: p.DisplayTitle(), URL: fmt.Sprintf("/posts/%d", p.ID)})
	}
	return links
}
