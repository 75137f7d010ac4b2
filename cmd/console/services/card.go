package services

import (
	"fmt"

	"blog-console/cmd/console/dto"
)

const (
	DefaultTagBadgeLimit = 3
	CardDateLayout       = "Jan 2, 2006"

	categoryBadgeClass = "badge-category"
	tagEvenClass       = "tag-even"
	tagOddClass        = "tag-odd"
)

type CardOptions struct {
	// TagLimit is the number of tag badges shown before the "+N" overflow.
	TagLimit int
	// AssetBaseURL resolves relative media keys.
	AssetBaseURL string
}

// RenderCard maps a summary into its list card. It is a pure function of its inputs.
func RenderCard(p dto.PostSummary, opts CardOptions) dto.Card {
	limit := opts.TagLimit
	if limit <= 0 {
		limit = DefaultTagBadgeLimit
	}

	card := dto.Card{
		ID:    p.ID,
		Title: p.DisplayTitle(),
		Media: SelectMedia(p, opts.AssetBaseURL),
		Tags:  []dto.Badge{},
		Actions: dto.CardActions{
			Preview: fmt.Sprintf("/posts/%d", p.ID),
			Edit:    fmt.Sprintf("/posts/update/%d", p.ID),
			Delete:  fmt.Sprintf("/posts/%d/delete", p.ID),
		},
	}
	if !p.UpdatedAt.IsZero() {
		card.Date = p.UpdatedAt.Format(CardDateLayout)
	}
	if p.FeaturedVideo != "" {
		card.Actions.DownloadVideo = fmt.Sprintf("/posts/%d/video", p.ID)
	}

	if len(p.Categories) > 0 {
		card.PrimaryCategory = p.Categories[0].Name
		card.ExtraCategories = len(p.Categories) - 1
	}

	shown := p.Tags
	if len(shown) > limit {
		shown = shown[:limit]
		card.ExtraTags = len(p.Tags) - limit
	}
	card.Tags = TagBadges(shown)
	return card
}

// RenderCards renders every summary in order.
func RenderCards(posts []dto.PostSummary, opts CardOptions) []dto.Card {
	cards := make([]dto.Card, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, RenderCard(p, opts))
	}
	return cards
}

// TagBadges alternates two classes by index parity.
func TagBadges(tags []string) []dto.Badge {
	out := make([]dto.Badge, 0, len(tags))
	for i, tag := range tags {
		class := tagEvenClass
		if i%2 == 1 {
			class = tagOddClass
		}
		out = append(out, dto.Badge{Label: tag, Class: class})
	}
	return out
}

// CategoryBadges renders every category in server order.
func CategoryBadges(categories []dto.Category) []dto.Badge {
	out := make([]dto.Badge, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.Badge{Label: c.Name, Class: categoryBadgeClass})
	}
	return out
}

// SelectMedia picks the video when present, else the image, else a placeholder.
func SelectMedia(p dto.PostSummary, assetBaseURL string) dto.Media {
	switch {
	case p.FeaturedVideo != "":
		return dto.Media{Kind: dto.MediaVideo, URL: AssetURL(assetBaseURL, p.FeaturedVideo)}
	case p.FeaturedImage != "":
		return dto.Media{Kind: dto.MediaImage, URL: AssetURL(assetBaseURL, p.FeaturedImage)}
	default:
		return dto.Media{Kind: dto.MediaPlaceholder}
	}
}
