// Package html turns fetched pages into a content tree the shell can show as
// text, along with the page title, its images and its followable links.
package html

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node represents a content node in the document.
type Node struct {
	Type     NodeType
	Text     string
	Children []*Node
	Href     string // link target or image source
	Ref      int    // 1-based link number, 0 when not followable
}

// NodeType identifies the kind of content node.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeHeading1
	NodeHeading2
	NodeHeading3
	NodeParagraph
	NodeBlockquote
	NodeList
	NodeListItem
	NodeCode
	NodeCodeBlock
	NodeLink
	NodeText
	NodeStrong
	NodeEmphasis
	NodeImage
)

// Link is a followable anchor on the page.
type Link struct {
	Text string
	URL  string
}

// Document is a parsed page.
type Document struct {
	Title   string
	URL     string
	Content *Node
	Images  []string // absolute, deduplicated, in page order
	Links   []Link   // Links[i] is shown as [i+1]
}

// Options controls parsing.
type Options struct {
	BaseURL     string
	StripImages bool
}

// Parse extracts page content from HTML.
func Parse(r io.Reader, opts Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(opts.BaseURL)
	d := &Document{
		Title: collapse(gq.Find("title").First().Text()),
		URL:   opts.BaseURL,
	}

	body := raw
	if opts.StripImages {
		body = stripImages(raw)
	} else {
		d.Images = imageSources(gq, base)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	root := &Node{Type: NodeDocument}

	article := findElement(doc, "article")
	if article == nil {
		article = findElement(doc, "main")
	}
	if article == nil {
		article = findElement(doc, "body")
	}
	if article == nil {
		article = doc
	}

	extractContent(article, root)
	d.Content = root
	d.numberLinks(root, base)
	return d, nil
}

// ParseString parses HTML from a string.
func ParseString(s string, opts Options) (*Document, error) {
	return Parse(strings.NewReader(s), opts)
}

// FromText wraps a plain text body as a single preformatted block.
func FromText(text, baseURL string) *Document {
	return &Document{
		URL: baseURL,
		Content: &Node{Type: NodeDocument, Children: []*Node{
			{Type: NodeCodeBlock, Text: strings.TrimRight(text, "\n")},
		}},
	}
}

// imageSources lists every <img src> once, resolved against base.
func imageSources(gq *goquery.Document, base *url.URL) []string {
	var out []string
	seen := map[string]bool{}
	gq.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = resolve(base, strings.TrimSpace(src))
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		out = append(out, src)
	})
	return out
}

// numberLinks resolves link targets and assigns reference numbers.
func (d *Document) numberLinks(n *Node, base *url.URL) {
	if n.Type == NodeLink {
		href := strings.TrimSpace(n.Href)
		if href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(strings.ToLower(href), "javascript:") {
			n.Href = resolve(base, href)
			d.Links = append(d.Links, Link{Text: collapse(n.PlainText()), URL: n.Href})
			n.Ref = len(d.Links)
		}
	}
	if n.Type == NodeImage {
		n.Href = resolve(base, n.Href)
	}
	for _, c := range n.Children {
		d.numberLinks(c, base)
	}
}

// LinkURL returns the target of link number ref.
func (d *Document) LinkURL(ref int) (string, bool) {
	if ref < 1 || ref > len(d.Links) {
		return "", false
	}
	return d.Links[ref-1].URL, true
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "head": true, "iframe": true, "button": true,
}

var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "blockquote": true, "ul": true, "ol": true, "pre": true,
	"div": true, "section": true, "article": true, "main": true, "header": true,
	"footer": true, "nav": true, "aside": true, "table": true, "tr": true,
	"tbody": true, "thead": true, "tfoot": true,
	"figure": true, "form": true, "dl": true,
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func extractContent(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if skipped[c.Data] {
				continue
			}
			switch c.Data {
			case "h1":
				parent.Children = append(parent.Children, &Node{Type: NodeHeading1, Text: collapse(textContent(c))})

			case "h2":
				parent.Children = append(parent.Children, &Node{Type: NodeHeading2, Text: collapse(textContent(c))})

			case "h3", "h4", "h5", "h6":
				parent.Children = append(parent.Children, &Node{Type: NodeHeading3, Text: collapse(textContent(c))})

			case "p", "tr", "dt", "dd", "figcaption":
				appendParagraph(c, parent)

			case "blockquote":
				node := &Node{Type: NodeBlockquote}
				extractContent(c, node)
				parent.Children = append(parent.Children, node)

			case "ul", "ol":
				node := &Node{Type: NodeList}
				extractList(c, node)
				parent.Children = append(parent.Children, node)

			case "pre":
				parent.Children = append(parent.Children, &Node{Type: NodeCodeBlock, Text: textContent(c)})

			case "img":
				parent.Children = append(parent.Children, imageNode(c))

			case "br", "hr":

			default:
				if hasBlockChild(c) {
					extractContent(c, parent)
				} else {
					appendParagraph(c, parent)
				}
			}

		case html.TextNode:
			if text := collapse(c.Data); text != "" {
				parent.Children = append(parent.Children, &Node{
					Type:     NodeParagraph,
					Children: []*Node{{Type: NodeText, Text: c.Data}},
				})
			}
		}
	}
}

// appendParagraph adds n's inline content as a paragraph if it has any.
func appendParagraph(n *html.Node, parent *Node) {
	node := &Node{Type: NodeParagraph}
	extractInline(n, node)
	if len(node.Children) == 0 {
		return
	}
	if collapse(node.PlainText()) == "" && !hasImage(node) {
		return
	}
	parent.Children = append(parent.Children, node)
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			return true
		}
	}
	return false
}

func hasImage(n *Node) bool {
	if n.Type == NodeImage {
		return true
	}
	for _, c := range n.Children {
		if hasImage(c) {
			return true
		}
	}
	return false
}

func extractList(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			item := &Node{Type: NodeListItem}
			extractInline(c, item)
			parent.Children = append(parent.Children, item)
		}
	}
}

func extractInline(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data != "" {
				parent.Children = append(parent.Children, &Node{Type: NodeText, Text: c.Data})
			}

		case html.ElementNode:
			if skipped[c.Data] {
				continue
			}
			switch c.Data {
			case "a":
				link := &Node{Type: NodeLink, Href: getAttr(c, "href")}
				extractInline(c, link)
				parent.Children = append(parent.Children, link)

			case "strong", "b":
				node := &Node{Type: NodeStrong}
				extractInline(c, node)
				parent.Children = append(parent.Children, node)

			case "em", "i":
				node := &Node{Type: NodeEmphasis}
				extractInline(c, node)
				parent.Children = append(parent.Children, node)

			case "code":
				parent.Children = append(parent.Children, &Node{Type: NodeCode, Text: textContent(c)})

			case "img":
				parent.Children = append(parent.Children, imageNode(c))

			case "br":
				parent.Children = append(parent.Children, &Node{Type: NodeText, Text: "\n"})

			case "td", "th":
				if len(parent.Children) > 0 {
					parent.Children = append(parent.Children, &Node{Type: NodeText, Text: " | "})
				}
				extractInline(c, parent)

			default:
				extractInline(c, parent)
			}
		}
	}
}

func imageNode(n *html.Node) *Node {
	return &Node{Type: NodeImage, Href: getAttr(n, "src"), Text: collapse(getAttr(n, "alt"))}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText returns the plain text content of a node and its children.
func (n *Node) PlainText() string {
	var sb strings.Builder
	n.appendPlainText(&sb)
	return sb.String()
}

func (n *Node) appendPlainText(sb *strings.Builder) {
	if n.Text != "" && n.Type != NodeImage {
		sb.WriteString(n.Text)
	}
	for _, child := range n.Children {
		child.appendPlainText(sb)
	}
}
