package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Breathe from the diaphragm", Text("  Breathe from the diaphragm \n"))
	assert.Equal(t, "Scales: do<re and mi>fa", Text("Scales: do<re and mi>fa"))
	assert.Equal(t, "Tom &amp; Jerry", Text("Tom &amp; Jerry"))
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Breathe from the diaphragm", Strip("  <b>Breathe</b> from the <script>x()</script>diaphragm "))
	assert.Equal(t, "Tom & Jerry", Strip("Tom &amp; Jerry"))
}

func TestPtr(t *testing.T) {
	assert.Nil(t, Ptr(nil))

	blank := "   "
	assert.Nil(t, Ptr(&blank))

	v := " pitch < 440Hz "
	assert.Equal(t, "pitch < 440Hz", *Ptr(&v))
}

func TestSlice(t *testing.T) {
	got := Slice([]string{"https://youtu.be/x", "  ", " https://a.b/c?x=<1> "})
	assert.Equal(t, []string{"https://youtu.be/x", "https://a.b/c?x=<1>"}, got)
}
