package services

import (
	"net/url"
	"strings"
)

// StorageKeyFromURL maps a stored asset URL back to the object key the API
// expects on submit: the path after the host, with a leading bucket segment
// removed when bucket is set, and without query or fragment. Values that are
// not absolute URLs are treated as keys already and only lose a leading slash
// and any query.
func StorageKeyFromURL(raw, bucket string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	path := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		path = raw[:i]
	}

	path = strings.TrimPrefix(path, "/")
	if bucket != "" {
		path = strings.TrimPrefix(path, strings.Trim(bucket, "/")+"/")
	}
	return path
}

// AssetURL resolves a storage key or URL into an absolute URL. Absolute URLs
// pass through; keys are joined onto base. An empty base returns the key as-is.
func AssetURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		return ref
	}
	if base == "" {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// stripQuery returns raw without its query string and fragment.
func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
