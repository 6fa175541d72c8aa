package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		url, resourceType, publicID string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1699/vocalstudio/scale.jpg", "image", "vocalstudio/scale"},
		{"https://res.cloudinary.com/demo/video/upload/vocalstudio/take1.mp3", "video", "vocalstudio/take1"},
		{"https://res.cloudinary.com/demo/raw/upload/v12/vocalstudio/notes.pdf", "raw", "vocalstudio/notes.pdf"},
		{"https://res.cloudinary.com/demo/image/upload/vocal/warmup.png", "image", "vocal/warmup"},
		{"https://example.com/no/marker/here.png", "", ""},
		{"::not a url", "", ""},
	}

	for _, tc := range cases {
		rt, id := ParseURL(tc.url)
		assert.Equal(t, tc.resourceType, rt, tc.url)
		assert.Equal(t, tc.publicID, id, tc.url)
	}
}

func TestObjectName(t *testing.T) {
	now := time.Unix(0, 42)

	assert.Equal(t, "42-Ave_Maria", ObjectName(now, "Ave Maria.pdf"))
	assert.Equal(t, "42-passwd", ObjectName(now, "../../etc/passwd"))
	assert.True(t, strings.HasPrefix(ObjectName(now, ".mp3"), "42-"))
}
