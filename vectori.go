// Package vectori 把一张位图图像分解为平涂颜色矢量图层，
// 并预先合成填充、描边、灰度及组合变体。
//
// 流水线：解码 → 调色板提取 → 按颜色/亮度分层 → 逐层描摹 →
// 片段合并/描边改写 → 组装只读结果。
package vectori

import (
	"context"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/JoniBach/vectori/color2layer"
	"github.com/JoniBach/vectori/imageio"
	"github.com/JoniBach/vectori/layer2svg"
	"github.com/JoniBach/vectori/palette"
	"github.com/JoniBach/vectori/svgmerge"
	vtypes "github.com/JoniBach/vectori/type"
)

// Options 流水线配置
type Options struct {
	// Colors 聚类调色板的颜色数量；<=0 时取 4
	Colors int
	// LumaTolerance 亮度带容差；<=0 时取 5
	LumaTolerance int
	// MaxWidth >0 时先把输入等比缩小到该宽度
	MaxWidth int
	// PaletteMethod 聚类策略
	PaletteMethod palette.Method
	// Tracer 外部描摹器；nil 时使用 gotrace
	Tracer layer2svg.Tracer
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		Colors:        4,
		LumaTolerance: color2layer.DefaultLumaTolerance,
		PaletteMethod: palette.MethodMedianCut,
	}
}

func (o Options) withDefaults() Options {
	if o.Colors <= 0 {
		o.Colors = 4
	}
	if o.LumaTolerance <= 0 {
		o.LumaTolerance = color2layer.DefaultLumaTolerance
	}
	if o.Tracer == nil {
		o.Tracer = layer2svg.GotraceTracer{}
	}
	return o
}

// Result 一次流水线调用的全部产物；构造后只读，
// 访问器是纯查表，不做任何重算
type Result struct {
	colorImage string
	greyImage  string

	popularColor []string
	popularGrey  []string
	allColor     []string
	allGrey      []string

	componentImagesColor []string
	componentImagesGrey  []string

	componentSVGColor   []string
	componentSVGGrey    []string
	componentSVGOutline []string

	docColor       vtypes.MergedDocument
	docGrey        vtypes.MergedDocument
	docOutline     vtypes.MergedDocument
	docColorOut    vtypes.MergedDocument
	docGreyOutline vtypes.MergedDocument
}

// Image 返回量化图（color）或灰度图（greyscale）的 PNG data-URI
func (r *Result) Image(mode vtypes.FillMode) (string, error) {
	switch mode {
	case vtypes.FillColor:
		return r.colorImage, nil
	case vtypes.FillGreyscale:
		return r.greyImage, nil
	}
	return "", fmt.Errorf("image: unsupported fill mode %s", mode)
}

// PopularPalette 返回聚类调色板的十六进制颜色列表
func (r *Result) PopularPalette(mode vtypes.FillMode) ([]string, error) {
	switch mode {
	case vtypes.FillColor:
		return r.popularColor, nil
	case vtypes.FillGreyscale:
		return r.popularGrey, nil
	}
	return nil, fmt.Errorf("popular palette: unsupported fill mode %s", mode)
}

// AllPalette 返回穷举调色板的十六进制颜色列表
func (r *Result) AllPalette(mode vtypes.FillMode) ([]string, error) {
	switch mode {
	case vtypes.FillColor:
		return r.allColor, nil
	case vtypes.FillGreyscale:
		return r.allGrey, nil
	}
	return nil, fmt.Errorf("all palette: unsupported fill mode %s", mode)
}

// ComponentImages 返回各图层掩码的 PNG data-URI 列表
func (r *Result) ComponentImages(mode vtypes.FillMode) ([]string, error) {
	switch mode {
	case vtypes.FillColor:
		return r.componentImagesColor, nil
	case vtypes.FillGreyscale:
		return r.componentImagesGrey, nil
	}
	return nil, fmt.Errorf("component images: unsupported fill mode %s", mode)
}

// ComponentSVGs 返回各图层矢量片段的文本列表
func (r *Result) ComponentSVGs(mode vtypes.FillMode) ([]string, error) {
	switch mode {
	case vtypes.FillColor:
		return r.componentSVGColor, nil
	case vtypes.FillGreyscale:
		return r.componentSVGGrey, nil
	case vtypes.FillOutline:
		return r.componentSVGOutline, nil
	}
	return nil, fmt.Errorf("component svgs: unsupported fill mode %s", mode)
}

// Document 返回指定变体的合并文档
func (r *Result) Document(mode vtypes.FillMode) (vtypes.MergedDocument, error) {
	switch mode {
	case vtypes.FillColor:
		return r.docColor, nil
	case vtypes.FillGreyscale:
		return r.docGrey, nil
	case vtypes.FillOutline:
		return r.docOutline, nil
	case vtypes.FillColorOutline:
		return r.docColorOut, nil
	case vtypes.FillGreyscaleOutline:
		return r.docGreyOutline, nil
	}
	return vtypes.MergedDocument{}, fmt.Errorf("document: unsupported fill mode %s", mode)
}

// SVG 返回指定变体的合并文档文本
func (r *Result) SVG(mode vtypes.FillMode) (string, error) {
	doc, err := r.Document(mode)
	if err != nil {
		return "", err
	}
	return doc.SVG, nil
}

// Convert 流水线入口：原始图像字节 → 只读结果。
// 任一环节出错则整次调用失败，不产出部分结果。
func Convert(ctx context.Context, data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	src, err := imageio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	src = imageio.Downscale(src, opts.MaxWidth)
	bounds := src.Bounds()
	log.Infof("converting %dx%d image, %d colors (%s)",
		bounds.Dx(), bounds.Dy(), opts.Colors, opts.PaletteMethod)

	pal, err := palette.Build(opts.PaletteMethod, src, opts.Colors)
	if err != nil {
		return nil, fmt.Errorf("build palette: %w", err)
	}
	palette.SortByBrightness(pal)

	allColor := palette.ExtractColorPalette(src)
	allLuma := palette.ExtractLumaPalette(src)

	quantized := color2layer.Quantize(src, pal)
	greyscale := imageio.Greyscale(src)

	// 彩色批次
	log.Info("separating color layers...")
	colorLayers := color2layer.SeparateByColor(quantized, pal)

	// 灰度批次：对量化图的亮度做容差分带
	greyPal := palette.ExtractLumaPalette(quantized)
	log.Info("separating greyscale layers...")
	greyLayers := color2layer.SeparateByLuma(quantized, greyPal, opts.LumaTolerance)

	log.Info("tracing layers...")
	colorFrags, err := layer2svg.TraceAll(ctx, opts.Tracer, colorLayers)
	if err != nil {
		return nil, fmt.Errorf("color batch: %w", err)
	}
	greyFrags, err := layer2svg.TraceAll(ctx, opts.Tracer, greyLayers)
	if err != nil {
		return nil, fmt.Errorf("greyscale batch: %w", err)
	}
	outlineFrags := svgmerge.OutlineAll(colorFrags)

	log.Info("merging fragments...")
	result := &Result{
		popularColor: pal.Hex(),
		popularGrey:  pal.Lumas().Hex(),
		allColor:     allColor.Hex(),
		allGrey:      allLuma.Hex(),

		componentSVGColor:   fragmentTexts(colorFrags),
		componentSVGGrey:    fragmentTexts(greyFrags),
		componentSVGOutline: fragmentTexts(outlineFrags),

		docColor:       svgmerge.Merge(colorFrags),
		docGrey:        svgmerge.Merge(greyFrags),
		docOutline:     svgmerge.Merge(outlineFrags),
		docColorOut:    svgmerge.Merge(slices.Concat(colorFrags, outlineFrags)),
		docGreyOutline: svgmerge.Merge(slices.Concat(greyFrags, outlineFrags)),
	}

	if result.colorImage, err = imageio.DataURI(quantized); err != nil {
		return nil, fmt.Errorf("encode quantized image: %w", err)
	}
	if result.greyImage, err = imageio.DataURI(greyscale); err != nil {
		return nil, fmt.Errorf("encode greyscale image: %w", err)
	}
	if result.componentImagesColor, err = maskURIs(colorLayers); err != nil {
		return nil, err
	}
	if result.componentImagesGrey, err = maskURIs(greyLayers); err != nil {
		return nil, err
	}

	return result, nil
}

func fragmentTexts(fragments []vtypes.VectorFragment) []string {
	out := make([]string, len(fragments))
	for i, frag := range fragments {
		out[i] = frag.SVG
	}
	return out
}

func maskURIs(layers []vtypes.Layer) ([]string, error) {
	out := make([]string, len(layers))
	for i, l := range layers {
		uri, err := imageio.DataURI(l.Mask)
		if err != nil {
			return nil, fmt.Errorf("encode layer %d mask: %w", i, err)
		}
		out[i] = uri
	}
	return out, nil
}
