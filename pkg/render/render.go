// Package render draws automata as Graphviz diagrams.
//
// [ToDOT] emits DOT for any automaton exposing the shared read interface;
// [RenderSVG] and [RenderPNG] rasterize the DOT via Graphviz. Rendering
// consumes the automaton read-only and a rendering failure never affects
// the automaton itself; callers treat render errors as artifact errors,
// not conversion errors.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// startPointID is the invisible node the start-state arrow originates from.
// Double underscores keep it clear of user state names.
const startPointID = "__start__"

// ToDOT converts an automaton to Graphviz DOT. States are laid out left to
// right from an invisible start point; accepting states get a double circle
// and epsilon transitions are labeled ε regardless of how the source
// document spelled them.
func ToDOT(a fsm.Automaton) string {
	var buf bytes.Buffer
	buf.WriteString("digraph automaton {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, fontsize=14];\n")
	buf.WriteString("\n")

	for _, state := range a.States() {
		if a.IsFinal(state) {
			fmt.Fprintf(&buf, "  %q [shape=doublecircle, style=filled, fillcolor=lightgrey];\n", state)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", state)
		}
	}

	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [shape=point];\n", startPointID)
	fmt.Fprintf(&buf, "  { rank=source; %q; %q; }\n", startPointID, a.StartState())
	fmt.Fprintf(&buf, "  %q -> %q;\n", startPointID, a.StartState())

	buf.WriteString("\n")
	for _, state := range a.States() {
		for _, symbol := range a.Symbols(state) {
			label := symbol
			if symbol == fsm.Epsilon {
				label = "ε"
			}
			for _, target := range a.Targets(state, symbol) {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", state, target, label)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the diagram scales to
// its viewBox instead of carrying Graphviz's absolute point sizes.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
