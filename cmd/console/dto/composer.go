package dto

// CategoryOption is one selectable category of the composer form.
type CategoryOption struct {
	ID       int64
	Name     string
	Selected bool
}

// ComposerPage is everything the composer template needs.
type ComposerPage struct {
	Key     string
	Action  string
	IsEdit  bool
	Heading string

	Title      string
	Body       string
	Tags       []Badge
	Categories []CategoryOption

	ImageURL         string
	PendingImageName string
	VideoURL         string
	VideoKey         string
	Uploading        bool
}
