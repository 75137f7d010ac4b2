package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyHasContent(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want bool
	}{
		{name: "empty", body: "", want: false},
		{name: "whitespace", body: "  \n ", want: false},
		{name: "empty editor", body: "<p><br></p>", want: false},
		{name: "nbsp only", body: "<p>&nbsp;</p>", want: false},
		{name: "text", body: "<p>Hello</p>", want: true},
		{name: "image only", body: `<p><img src="a.png"></p>`, want: true},
		{name: "embedded video", body: `<iframe src="https://youtube.com/embed/x"></iframe>`, want: true},
		{name: "plain text", body: "hi", want: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, BodyHasContent(testCase.body))
		})
	}
}

func TestSanitizeBodyKeepsFormattingAndDropsScripts(t *testing.T) {
	out := string(SanitizeBody(`<h2>Title</h2><p><strong>bold</strong> <a href="https://example.com">link</a></p><script>alert(1)</script><img src="https://example.com/a.png" onerror="x()">`))

	assert.Contains(t, out, "<h2>Title</h2>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `src="https://example.com/a.png"`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onerror")
}
