package hackathons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFileRef(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "", ""},
		{"https passthrough", "https://res.cloudinary.com/demo/image/upload/v1/poster.png", "https://res.cloudinary.com/demo/image/upload/v1/poster.png"},
		{"http passthrough", "http://cdn.example.com/a.pdf", "http://cdn.example.com/a.pdf"},
		{"bare filename", "poster.png", "/uploads/poster.png"},
		{"leading slash", "/poster.png", "/uploads/poster.png"},
		{"windows separators", "posters\\2024\\poster.png", "/uploads/posters/2024/poster.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeFileRef(tc.ref, "/uploads"))
		})
	}
}

func TestNormalizeFileRefBaseTrailingSlash(t *testing.T) {
	assert.Equal(t, "/uploads/a.png", NormalizeFileRef("a.png", "/uploads/"))
	assert.Equal(t, "https://files.tce.edu/a.png", NormalizeFileRef("a.png", "https://files.tce.edu"))
}
