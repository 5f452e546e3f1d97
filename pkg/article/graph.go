package article

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scrolly/pkg/chart"
)

// ToDOT draws the narrative as a Graphviz digraph: one cluster per chart,
// steps chained in reading order, and an edge across clusters where the
// reader moves from one chart to the next.
func ToDOT(sections []Section, defs []chart.Definition) string {
	descr := make(map[string]string)
	titles := make(map[string]string)
	for _, d := range defs {
		titles[d.Name] = d.Title
		for _, st := range d.Steps {
			descr[st.ID] = st.Description
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph narrative {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")

	var order []string
	byChart := make(map[string][]Section)
	for _, s := range sections {
		if _, ok := byChart[s.Chart]; !ok {
			order = append(order, s.Chart)
		}
		byChart[s.Chart] = append(byChart[s.Chart], s)
	}

	for i, name := range order {
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		title := titles[name]
		if title == "" {
			title = name
		}
		fmt.Fprintf(&buf, "    label=%s;\n", strconv.Quote(title))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, s := range byChart[name] {
			label := s.Step
			if d := descr[s.Step]; d != "" {
				label += "\\n" + d
			}
			fmt.Fprintf(&buf, "    %s [label=\"%s\"];\n", strconv.Quote(s.Step), escapeLabel(label))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i := 1; i < len(sections); i++ {
		style := ""
		if sections[i].Chart != sections[i-1].Chart {
			style = " [style=dashed]"
		}
		fmt.Fprintf(&buf, "  %s -> %s%s;\n", strconv.Quote(sections[i-1].Step), strconv.Quote(sections[i].Step), style)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// escapeLabel quotes " but keeps the \n line breaks Graphviz understands.
func escapeLabel(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' {
			b.WriteString(`\"`)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
