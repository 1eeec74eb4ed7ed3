package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	source := []byte(`---
subject: Alice shared "Docs" with you
---
Hi **Bob**,

[Open it](https://drive.example.com/folders/1)
`)

	doc, err := NewParser().Render(source)
	require.NoError(t, err)

	assert.Equal(t, `Alice shared "Docs" with you`, doc.String("subject"))
	assert.Empty(t, doc.String("missing"))
	assert.Contains(t, string(doc.HTML), "<strong>Bob</strong>")
	assert.Contains(t, string(doc.HTML), `href="https://drive.example.com/folders/1"`)
	assert.NotContains(t, string(doc.HTML), "subject:")
}

func TestRenderWithoutFrontmatter(t *testing.T) {
	doc, err := NewParser().Render([]byte("plain"))
	require.NoError(t, err)

	assert.Empty(t, doc.Meta)
	assert.Contains(t, string(doc.HTML), "plain")
}
