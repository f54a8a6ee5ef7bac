package images

import (
	"net/http"
	"strings"

	"github.com/dcode-github/dealdirect/backend/models"
)

const uploadsPrefix = "uploads/"

// IsAbsoluteURL reports whether a stored image value is already a full
// http(s) URL.
func IsAbsoluteURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// StoredName reduces a stored image value to the bare name under the uploads
// root. Legacy records may carry backslashes or a redundant "uploads/" prefix.
func StoredName(raw string) string {
	name := strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	name = strings.TrimLeft(name, "/")
	for strings.HasPrefix(name, uploadsPrefix) {
		name = strings.TrimLeft(strings.TrimPrefix(name, uploadsPrefix), "/")
	}
	return name
}

// Normalizer turns stored image values into client-usable URLs. It does no I/O.
type Normalizer struct {
	base string
}

func NewNormalizer(baseURL string) Normalizer {
	return Normalizer{base: strings.TrimRight(baseURL, "/")}
}

func (n Normalizer) URL(raw string) string {
	if raw == "" || IsAbsoluteURL(raw) {
		return raw
	}
	return n.base + "/" + uploadsPrefix + StoredName(raw)
}

func (n Normalizer) URLs(raw []string) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = n.URL(r)
	}
	return out
}

// Apply rewrites the images of a listing in place.
func (n Normalizer) Apply(f *models.ListingFields) {
	if f == nil {
		return
	}
	f.Images = n.URLs(f.Images)
}

func (n Normalizer) ApplyViews(views []models.PropertyView) {
	for i := range views {
		n.Apply(&views[i].ListingFields)
	}
}

// BaseURL derives the public base URL of the service from the request when no
// fixed one is configured. Forwarded headers are honoured only when
// trustProxy is set.
func BaseURL(r *http.Request, configured string, trustProxy bool) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustProxy {
		if p := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); p != "" {
			scheme = p
		}
		if h := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); h != "" {
			host = h
		}
	}
	return scheme + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
