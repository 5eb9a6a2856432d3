// Package layer2svg 调用外部描摹器把掩码图层转为矢量片段
package layer2svg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"sync"

	"github.com/gotranspile/gotrace"
	log "github.com/sirupsen/logrus"

	"github.com/JoniBach/vectori/imageio"
	vtypes "github.com/JoniBach/vectori/type"
)

// Tracer 外部描摹器接口：掩码 PNG 字节 + 填充色 → 矢量片段。
// 单次调用可能失败；失败策略由批处理入口决定。
type Tracer interface {
	Trace(ctx context.Context, maskPNG []byte, fillHex string) (vtypes.VectorFragment, error)
}

// GotraceTracer 默认实现：使用 gotrace 描摹
type GotraceTracer struct{}

var fillAttrRe = regexp.MustCompile(`fill="[^"]*"`)

// Trace 把掩码图层描摹为 SVG 片段并注入填充色。
// 非白像素视为前景。
func (GotraceTracer) Trace(ctx context.Context, maskPNG []byte, fillHex string) (vtypes.VectorFragment, error) {
	if err := ctx.Err(); err != nil {
		return vtypes.VectorFragment{}, err
	}

	img, err := imageio.Decode(maskPNG)
	if err != nil {
		return vtypes.VectorFragment{}, fmt.Errorf("decode mask: %w", err)
	}

	gray := maskToGray(img)
	bm := gotrace.BitmapFromGray(gray, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return vtypes.VectorFragment{}, fmt.Errorf("trace mask: %w", err)
	}

	var buf bytes.Buffer
	sz := gray.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return vtypes.VectorFragment{}, fmt.Errorf("render svg: %w", err)
	}

	return vtypes.VectorFragment{SVG: injectFill(buf.String(), fillHex)}, nil
}

// maskToGray 非白像素 → 黑（前景），白像素 → 白（背景）
func maskToGray(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if vtypes.FromColor(img.At(x, y)) == vtypes.White {
				gray.SetGray(x, y, color.Gray{Y: 255})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return gray
}

// injectFill 把片段内已有的 fill 属性替换为目标色；
// 没有任何 fill 属性时给每个 path 补上
func injectFill(svgText, fillHex string) string {
	attr := `fill="` + fillHex + `"`
	if fillAttrRe.MatchString(svgText) {
		return fillAttrRe.ReplaceAllString(svgText, attr)
	}
	return pathOpenRe.ReplaceAllString(svgText, "<path "+attr+" ")
}

var pathOpenRe = regexp.MustCompile(`<path\s`)

// TraceAll 并发描摹一批图层，结果按调色板索引顺序对齐返回。
// 任何一个图层失败则整批作废，不产出部分结果。
func TraceAll(ctx context.Context, tracer Tracer, layers []vtypes.Layer) ([]vtypes.VectorFragment, error) {
	fragments := make([]vtypes.VectorFragment, len(layers))
	errs := make(chan error, len(layers))

	var wg sync.WaitGroup
	for i, l := range layers {
		wg.Add(1)
		go func(idx int, layer vtypes.Layer) {
			defer wg.Done()
			maskPNG, err := imageio.EncodePNG(layer.Mask)
			if err != nil {
				errs <- fmt.Errorf("encode layer %d mask: %w", idx, err)
				return
			}
			frag, err := tracer.Trace(ctx, maskPNG, layer.Color.Hex())
			if err != nil {
				errs <- fmt.Errorf("trace layer %d: %w", idx, err)
				return
			}
			frag.Color = layer.Color
			fragments[idx] = frag
		}(i, l)
	}
	wg.Wait()
	close(errs)

	// 返回第一个错误（如果有）
	for err := range errs {
		return nil, err
	}

	log.Debugf("traced %d layers", len(fragments))
	return fragments, nil
}
