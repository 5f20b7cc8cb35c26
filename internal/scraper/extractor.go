package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxExtractLen caps the text handed to the analysis and embedding models.
const MaxExtractLen = 50_000

// ErrEmptyExtraction is returned when a page yields no visible text after
// boilerplate removal.
var ErrEmptyExtraction = errors.New("no text content extracted")

type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract strips boilerplate elements from the fetched HTML and returns the
// visible text with whitespace normalized to single spaces.
func (e *HTMLExtractor) Extract(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, svg, picture, button, img, noscript, iframe, nav, header, footer").Remove()

	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		// Fragments without a body tag still parse; fall back to the whole tree.
		text = strings.TrimSpace(doc.Text())
	}

	fields := strings.Fields(text)
	text = strings.Join(fields, " ")

	if len(text) > MaxExtractLen {
		text = text[:MaxExtractLen]
	}
	if text == "" {
		return "", ErrEmptyExtraction
	}
	return text, nil
}
