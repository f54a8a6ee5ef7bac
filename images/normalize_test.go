package images

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcode-github/dealdirect/backend/models"
)

func TestNormalizerURL(t *testing.T) {
	const base = "https://api.example.com"
	n := NewNormalizer(base + "/")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"uploads prefix", "uploads/foo.jpg", base + "/uploads/foo.jpg"},
		{"bare filename", "foo.jpg", base + "/uploads/foo.jpg"},
		{"absolute url", "https://cdn.x/foo.jpg", "https://cdn.x/foo.jpg"},
		{"absolute http upper case", "HTTP://cdn.x/a.png", "HTTP://cdn.x/a.png"},
		{"leading slash", "/uploads/foo.jpg", base + "/uploads/foo.jpg"},
		{"windows separators", "uploads\\foo.jpg", base + "/uploads/foo.jpg"},
		{"doubled prefix", "uploads/uploads/foo.jpg", base + "/uploads/foo.jpg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.URL(tt.raw))
		})
	}
}

func TestNormalizerApply(t *testing.T) {
	n := NewNormalizer("http://localhost:9000")
	views := []models.PropertyView{
		{ListingFields: models.ListingFields{Images: []string{"a.jpg", "https://cdn.x/b.jpg"}}},
	}

	n.ApplyViews(views)

	assert.Equal(t, []string{"http://localhost:9000/uploads/a.jpg", "https://cdn.x/b.jpg"}, views[0].Images)
}

func TestBaseURL(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.local:9000/api/properties/list", nil)
	assert.Equal(t, "http://api.local:9000", BaseURL(r, "", false))
	assert.Equal(t, "https://fixed.example", BaseURL(r, "https://fixed.example/", false))

	r.Header.Set("X-Forwarded-Proto", "https, http")
	r.Header.Set("X-Forwarded-Host", "public.example")
	assert.Equal(t, "https://public.example", BaseURL(r, "", true))
	assert.Equal(t, "http://api.local:9000", BaseURL(r, "", false))

	r = httptest.NewRequest("GET", "https://secure.local/x", nil)
	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://secure.local", BaseURL(r, "", false))
}
