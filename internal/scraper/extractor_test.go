package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStripsBoilerplate(t *testing.T) {
	html := `<html><head><title>t</title></head><body>
		<nav>menu items</nav>
		<script>var x = 1;</script>
		<style>.a { color: red }</style>
		<p>Actual    article
		text.</p>
		<footer>copyright</footer>
	</body></html>`

	text, err := NewHTMLExtractor().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Actual article text.", text)
}

func TestExtractFallsBackWithoutBody(t *testing.T) {
	text, err := NewHTMLExtractor().Extract([]byte(`<div>fragment text</div>`))
	require.NoError(t, err)
	assert.Equal(t, "fragment text", text)
}

func TestExtractEmptyPage(t *testing.T) {
	_, err := NewHTMLExtractor().Extract([]byte(`<html><body><script>only()</script></body></html>`))
	assert.ErrorIs(t, err, ErrEmptyExtraction)
}

func TestExtractTruncatesLongContent(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("word ", 20_000) + "</p></body></html>"
	text, err := NewHTMLExtractor().Extract([]byte(html))
	require.NoError(t, err)
	assert.Len(t, text, MaxExtractLen)
}
