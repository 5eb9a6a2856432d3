package svgmerge

import (
	"strings"
	"testing"

	vtypes "github.com/JoniBach/vectori/type"
)

func TestOutlineRewritesPaint(t *testing.T) {
	in := frag(`<svg viewBox="0 0 4 4"><g fill="#ff0000" stroke="none"><path d="M1 1h2v2z"/></g></svg>`)
	out := Outline(in)

	if strings.Contains(out.SVG, `fill="#ff0000"`) {
		t.Errorf("fill survived: %s", out.SVG)
	}
	if !strings.Contains(out.SVG, `fill="none"`) {
		t.Errorf("fill not disabled: %s", out.SVG)
	}
	if !strings.Contains(out.SVG, `stroke="#000000"`) || !strings.Contains(out.SVG, `stroke-width="1"`) {
		t.Errorf("stroke not rewritten: %s", out.SVG)
	}
	// 几何保持不变
	if !strings.Contains(out.SVG, `d="M1 1h2v2z"`) {
		t.Errorf("path data changed: %s", out.SVG)
	}
	if FrameOf(out) != FrameOf(in) {
		t.Error("coordinate frame changed")
	}
}

func TestOutlineAddsStrokeWhenAbsent(t *testing.T) {
	in := frag(`<svg viewBox="0 0 4 4"><path d="M0 0h4" fill="#00ff00"/></svg>`)
	out := Outline(in)
	if !strings.Contains(out.SVG, `stroke="#000000" stroke-width="1"`) {
		t.Errorf("stroke not added: %s", out.SVG)
	}
}

func TestOutlineIdempotent(t *testing.T) {
	cases := []vtypes.VectorFragment{
		frag(`<svg viewBox="0 0 4 4"><g fill="#ff0000" stroke="none"><path d="M1 1"/></g></svg>`),
		frag(`<svg viewBox="0 0 4 4"><path d="M0 0h4" fill="#00ff00"/></svg>`),
		frag(`<svg viewBox="0 0 4 4"><path d="M0 0" stroke="#123456" stroke-width="3"/></svg>`),
	}
	for i, in := range cases {
		once := Outline(in)
		twice := Outline(once)
		if once != twice {
			t.Errorf("case %d not idempotent:\nonce:  %s\ntwice: %s", i, once.SVG, twice.SVG)
		}
	}
}

func TestOutlineAllKeepsAlignment(t *testing.T) {
	in := []vtypes.VectorFragment{
		{Color: vtypes.Color{R: 255}, SVG: `<svg viewBox="0 0 2 2"><path d="M0 0" fill="#ff0000"/></svg>`},
		{Color: vtypes.Color{G: 255}, SVG: `<svg viewBox="0 0 2 2"><path d="M1 1" fill="#00ff00"/></svg>`},
	}
	out := OutlineAll(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d", len(out))
	}
	for i := range out {
		if out[i].Color != in[i].Color {
			t.Errorf("fragment %d color changed", i)
		}
	}
}
