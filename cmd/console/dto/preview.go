package dto

import "html/template"

// SidebarLink points to another post from the preview page.
type SidebarLink struct {
	Title string
	URL   string
}

// Preview is the routed detail view of a post. Failed is set when the detail
// could not be loaded; the template then shows a terminal message only.
type Preview struct {
	ID         int64
	Title      string
	Categories []Badge
	Tags       []Badge
	Media      Media
	Body       template.HTML
	Sidebar    []SidebarLink
	Failed     bool
}
