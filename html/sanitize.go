package html

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	noImagesOnce   sync.Once
	noImagesPolicy *bluemonday.Policy
)

// textPolicy keeps the elements the extractor understands and drops images,
// media and anything executable.
func textPolicy() *bluemonday.Policy {
	noImagesOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(
			"html", "body", "article", "main", "section", "div", "header", "footer",
			"nav", "aside", "h1", "h2", "h3", "h4", "h5", "h6", "p", "br", "hr",
			"blockquote", "ul", "ol", "li", "pre", "code", "strong", "b", "em", "i",
			"span", "table", "thead", "tbody", "tfoot", "tr", "td", "th",
			"dl", "dt", "dd", "figure", "figcaption",
		)
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto", "file")
		p.AllowRelativeURLs(true)
		noImagesPolicy = p
	})
	return noImagesPolicy
}

// stripImages returns src with images and other embedded media removed.
func stripImages(src []byte) []byte {
	return textPolicy().SanitizeBytes(src)
}
