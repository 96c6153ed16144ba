package html

import (
	"fmt"
	"strings"
)

// RenderOptions controls how a document becomes text.
type RenderOptions struct {
	// CollapseImages replaces image markers with a single count line.
	CollapseImages bool
}

// Lines renders the document as unwrapped text lines with a blank line
// between blocks.
func (d *Document) Lines(opts RenderOptions) []string {
	r := &textRenderer{opts: opts}
	if d.Content != nil {
		r.blocks(d.Content.Children, "")
	}

	lines := r.lines
	if opts.CollapseImages && r.hidden > 0 {
		noun := "images"
		if r.hidden == 1 {
			noun = "image"
		}
		lines = append([]string{fmt.Sprintf("[%d %s hidden]", r.hidden, noun), ""}, lines...)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Text renders the document as a single string.
func (d *Document) Text(opts RenderOptions) string {
	return strings.Join(d.Lines(opts), "\n")
}

type textRenderer struct {
	opts   RenderOptions
	lines  []string
	hidden int
}

func (r *textRenderer) emit(prefix string, text ...string) {
	for _, t := range text {
		r.lines = append(r.lines, prefix+t)
	}
}

func (r *textRenderer) gap() {
	if n := len(r.lines); n > 0 && r.lines[n-1] != "" {
		r.lines = append(r.lines, "")
	}
}

func (r *textRenderer) blocks(nodes []*Node, prefix string) {
	for _, n := range nodes {
		switch n.Type {
		case NodeHeading1:
			r.emit(prefix, "# "+n.Text)
		case NodeHeading2:
			r.emit(prefix, "## "+n.Text)
		case NodeHeading3:
			r.emit(prefix, "### "+n.Text)
		case NodeParagraph:
			text := r.inline(n.Children)
			if text == "" {
				continue
			}
			r.emit(prefix, strings.Split(text, "\n")...)
		case NodeBlockquote:
			r.blocks(n.Children, prefix+"> ")
			continue
		case NodeList:
			for _, item := range n.Children {
				if text := r.inline(item.Children); text != "" {
					r.emit(prefix, "  • "+strings.ReplaceAll(text, "\n", " "))
				}
			}
		case NodeCodeBlock:
			for _, l := range strings.Split(n.Text, "\n") {
				r.emit(prefix, "    "+l)
			}
		case NodeImage:
			marker := r.image(n)
			if marker == "" {
				continue
			}
			r.emit(prefix, marker)
		default:
			continue
		}
		r.gap()
	}
}

func (r *textRenderer) image(n *Node) string {
	if r.opts.CollapseImages {
		r.hidden++
		return ""
	}
	if n.Text != "" {
		return "[image: " + n.Text + "]"
	}
	return "[image]"
}

// inline flattens inline nodes, collapsing whitespace within each line.
func (r *textRenderer) inline(nodes []*Node) string {
	var sb strings.Builder
	r.appendInline(&sb, nodes)

	parts := strings.Split(sb.String(), "\n")
	out := parts[:0]
	for _, p := range parts {
		if p = collapse(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func (r *textRenderer) appendInline(sb *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		switch n.Type {
		case NodeText:
			sb.WriteString(n.Text)
		case NodeCode:
			sb.WriteString("`" + n.Text + "`")
		case NodeLink:
			r.appendInline(sb, n.Children)
			if n.Ref > 0 {
				fmt.Fprintf(sb, "[%d]", n.Ref)
			}
		case NodeImage:
			if marker := r.image(n); marker != "" {
				sb.WriteString(" " + marker + " ")
			}
		default:
			r.appendInline(sb, n.Children)
		}
	}
}
