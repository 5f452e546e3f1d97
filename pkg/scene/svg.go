package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// transitionCSS animates step changes; geometry changes from relayout are
// applied instantly.
const transitionCSS = `
    rect, circle, path, text { transition: fill %[1]s ease, stroke %[1]s ease; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	transition time.Duration
	standalone bool
	css        []string
}

// cssTime formats d as a CSS <time> in milliseconds.
func cssTime(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', -1, 64) + "ms"
}

// WithTransitions eases fill and stroke changes over d.
func WithTransitions(d time.Duration) SVGOption {
	return func(r *svgRenderer) { r.transition = d }
}

// WithStandalone prepends the XML declaration, for files written to disk.
func WithStandalone() SVGOption { return func(r *svgRenderer) { r.standalone = true } }

// WithCSS adds a stylesheet to the <style> block.
func WithCSS(css string) SVGOption {
	return func(r *svgRenderer) { r.css = append(r.css, css) }
}

// RenderSVG serializes the scene. Output is deterministic for a given tree.
func RenderSVG(s *Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if r.standalone {
		buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}

	root := s.Root()
	buf.WriteString("<svg")
	fmt.Fprintf(&buf, ` xmlns=%q`, svgNamespace)
	writeAttrs(&buf, root)
	buf.WriteString(">\n")

	if css := r.stylesheet(); css != "" {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", css)
	}
	for _, c := range root.children {
		writeElement(&buf, c, 1)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) stylesheet() string {
	var parts []string
	if r.transition > 0 {
		parts = append(parts, fmt.Sprintf(transitionCSS, cssTime(r.transition)))
	}
	for _, c := range r.css {
		parts = append(parts, "\n    "+strings.TrimSpace(c))
	}
	return strings.Join(parts, "")
}

func writeElement(buf *bytes.Buffer, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(string(e.Kind))
	writeAttrs(buf, e)

	switch {
	case len(e.children) > 0:
		buf.WriteString(">\n")
		for _, c := range e.children {
			writeElement(buf, c, depth+1)
		}
		fmt.Fprintf(buf, "%s</%s>\n", indent, e.Kind)
	case e.Text != "":
		buf.WriteByte('>')
		_ = xml.EscapeText(buf, []byte(e.Text))
		fmt.Fprintf(buf, "</%s>\n", e.Kind)
	default:
		buf.WriteString("/>\n")
	}
}

func writeAttrs(buf *bytes.Buffer, e *Element) {
	if len(e.classes) > 0 {
		writeAttr(buf, "class", strings.Join(e.classes, " "))
	}
	for _, a := range e.attrs {
		writeAttr(buf, a.name, a.value)
	}
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	_ = xml.EscapeText(buf, []byte(value))
	buf.WriteByte('"')
}
