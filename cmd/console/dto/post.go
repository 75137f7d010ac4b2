package dto

import "time"

const UntitledPost = "Untitled Post"

// Category is a post category as exposed to the console.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostSummary is the list-rendering shape of a post.
// Categories and Tags keep the server's order; the first category is the primary badge.
type PostSummary struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Categories    []Category `json:"categories"`
	Tags          []string   `json:"tags"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	FeaturedVideo string     `json:"featured_video,omitempty"`
}

// DisplayTitle returns the title or the placeholder used for untitled posts.
func (p PostSummary) DisplayTitle() string {
	if p.Title == "" {
		return UntitledPost
	}
	return p.Title
}

// Clone returns a copy that shares no slices with p.
func (p PostSummary) Clone() PostSummary {
	out := p
	if p.Categories != nil {
		out.Categories = append([]Category(nil), p.Categories...)
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	return out
}

// PostDetail adds the full HTML body to a summary.
type PostDetail struct {
	PostSummary
	Body string `json:"body"`
}

func (d PostDetail) Clone() PostDetail {
	return PostDetail{PostSummary: d.PostSummary.Clone(), Body: d.Body}
}
