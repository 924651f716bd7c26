package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis", "Hello **world**", "<p>Hello <strong>world</strong></p>\n"},
		{"heading", "# Title", "<h1>Title</h1>\n"},
		{"strikethrough", "~~old~~", "<p><del>old</del></p>\n"},
		{"raw html dropped", "<script>alert(1)</script>", "<!-- raw HTML omitted -->\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Markdown(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
