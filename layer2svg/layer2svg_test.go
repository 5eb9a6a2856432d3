package layer2svg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/JoniBach/vectori/imageio"
	vtypes "github.com/JoniBach/vectori/type"
)

// stubTracer 按填充色生成固定片段；可配置延迟与指定失败的颜色
type stubTracer struct {
	failHex string
	delays  map[string]time.Duration
}

func (s stubTracer) Trace(ctx context.Context, maskPNG []byte, fillHex string) (vtypes.VectorFragment, error) {
	if d, ok := s.delays[fillHex]; ok {
		time.Sleep(d)
	}
	if fillHex == s.failHex {
		return vtypes.VectorFragment{}, errors.New("tracer exploded")
	}
	img, err := imageio.Decode(maskPNG)
	if err != nil {
		return vtypes.VectorFragment{}, err
	}
	sz := img.Bounds().Size()
	svg := fmt.Sprintf(`<svg viewBox="0 0 %d %d"><path d="M0 0h1v1z" fill=%q/></svg>`, sz.X, sz.Y, fillHex)
	return vtypes.VectorFragment{SVG: svg}, nil
}

func makeLayers(colors ...vtypes.Color) []vtypes.Layer {
	layers := make([]vtypes.Layer, len(colors))
	for i, c := range colors {
		mask := image.NewRGBA(image.Rect(0, 0, 2, 2))
		mask.Set(0, 0, c.RGBA())
		mask.Set(1, 0, vtypes.White.RGBA())
		mask.Set(0, 1, vtypes.White.RGBA())
		mask.Set(1, 1, vtypes.White.RGBA())
		layers[i] = vtypes.Layer{Index: i, Color: c, Mask: mask}
	}
	return layers
}

func TestTraceAllKeepsPaletteOrder(t *testing.T) {
	colors := []vtypes.Color{{R: 255}, {G: 255}, {B: 255}}
	// 第一层最慢、最后一层最快，完成顺序与索引顺序相反
	tracer := stubTracer{delays: map[string]time.Duration{
		"#ff0000": 30 * time.Millisecond,
		"#00ff00": 15 * time.Millisecond,
	}}

	fragments, err := TraceAll(context.Background(), tracer, makeLayers(colors...))
	if err != nil {
		t.Fatalf("TraceAll: %v", err)
	}
	if len(fragments) != len(colors) {
		t.Fatalf("fragment count = %d, want %d", len(fragments), len(colors))
	}
	for i, frag := range fragments {
		if frag.Color != colors[i] {
			t.Errorf("fragment %d color = %v, want %v", i, frag.Color, colors[i])
		}
		if !strings.Contains(frag.SVG, colors[i].Hex()) {
			t.Errorf("fragment %d does not carry its layer's fill %s", i, colors[i].Hex())
		}
	}
}

func TestTraceAllFailingLayerVoidsBatch(t *testing.T) {
	colors := []vtypes.Color{{R: 255}, {G: 255}, {B: 255}}
	tracer := stubTracer{failHex: "#00ff00"}

	fragments, err := TraceAll(context.Background(), tracer, makeLayers(colors...))
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if fragments != nil {
		t.Errorf("failed batch produced partial fragments: %v", fragments)
	}
	if !strings.Contains(err.Error(), "trace layer 1") {
		t.Errorf("error %q does not name the failing layer", err)
	}
}

func TestTraceAllEmptyBatch(t *testing.T) {
	fragments, err := TraceAll(context.Background(), stubTracer{}, nil)
	if err != nil {
		t.Fatalf("TraceAll: %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("fragment count = %d, want 0", len(fragments))
	}
}

func TestInjectFillReplacesExistingAttributes(t *testing.T) {
	in := `<svg><g fill="#000000"><path d="M0 0" fill="#000000"/></g></svg>`
	out := injectFill(in, "#ff0000")
	if strings.Contains(out, "#000000") {
		t.Errorf("old fill survived: %s", out)
	}
	if strings.Count(out, `fill="#ff0000"`) != 2 {
		t.Errorf("fill not applied to every declaration: %s", out)
	}
}

func TestInjectFillAddsAttributeWhenMissing(t *testing.T) {
	in := `<svg><path d="M0 0h1"/></svg>`
	out := injectFill(in, "#ff0000")
	if !strings.Contains(out, `fill="#ff0000"`) {
		t.Errorf("fill not injected: %s", out)
	}
}
