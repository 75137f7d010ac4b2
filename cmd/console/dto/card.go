package dto

// MediaKind tells the template which element to render for a card or a preview.
type MediaKind string

const (
	MediaVideo       MediaKind = "video"
	MediaImage       MediaKind = "image"
	MediaPlaceholder MediaKind = "placeholder"
)

type Media struct {
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url,omitempty"`
}

// Badge is a rendered tag or category chip.
type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// CardActions lists the routes a card links to. DownloadVideo is empty when the post has no video.
type CardActions struct {
	Preview       string `json:"preview"`
	Edit          string `json:"edit"`
	Delete        string `json:"delete"`
	DownloadVideo string `json:"download_video,omitempty"`
}

// Card is the presentation of one PostSummary in the list view.
type Card struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Date            string      `json:"date"`
	Media           Media       `json:"media"`
	PrimaryCategory string      `json:"primary_category,omitempty"`
	ExtraCategories int         `json:"extra_categories,omitempty"`
	Tags            []Badge     `json:"tags"`
	ExtraTags       int         `json:"extra_tags,omitempty"`
	Actions         CardActions `json:"actions"`
}
