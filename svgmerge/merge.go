// Package svgmerge 把独立描摹的矢量片段合并为单个文档，
// 并提供描边（outline）改写
package svgmerge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	floatsvg "github.com/ajstarks/svgo/float"
	rsvg "github.com/rustyoz/svg"

	vtypes "github.com/JoniBach/vectori/type"
)

// fragmentDoc 片段根元素上我们关心的属性与内部内容
type fragmentDoc struct {
	ViewBox string `xml:"viewBox,attr"`
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	Inner   string `xml:",innerxml"`
}

// FrameOf 推断片段的坐标框：优先 viewBox，
// 其次 width/height（原点取 0,0），都没有则当作零尺寸框。
// 零尺寸回退是静默降级而非错误；依赖精确包围框的调用方
// 必须保证每个片段都声明坐标框。
func FrameOf(frag vtypes.VectorFragment) vtypes.Frame {
	doc, _ := parseFragment(frag.SVG)

	viewBox := doc.ViewBox
	if parsed, err := rsvg.ParseSvg(frag.SVG, "fragment", 1.0); err == nil && parsed.ViewBox != "" {
		viewBox = parsed.ViewBox
	}
	if f, ok := parseViewBox(viewBox); ok {
		return f
	}
	if w, err1 := parseLength(doc.Width); err1 == nil {
		if h, err2 := parseLength(doc.Height); err2 == nil {
			return vtypes.Frame{Width: w, Height: h}
		}
	}
	return vtypes.Frame{}
}

// parseFragment 用 xml 反序列化读取根元素属性与 innerxml
func parseFragment(svgText string) (fragmentDoc, error) {
	var doc fragmentDoc
	if err := xml.Unmarshal([]byte(svgText), &doc); err != nil {
		return fragmentDoc{}, fmt.Errorf("parse fragment: %w", err)
	}
	return doc, nil
}

// parseViewBox 解析 "minX minY width height"
func parseViewBox(s string) (vtypes.Frame, bool) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return vtypes.Frame{}, false
	}
	vals := make([]float64, 4)
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return vtypes.Frame{}, false
		}
		vals[i] = v
	}
	return vtypes.Frame{MinX: vals[0], MinY: vals[1], Width: vals[2], Height: vals[3]}, true
}

// parseLength 解析可能带 px 等单位后缀的长度属性
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz%")
	return strconv.ParseFloat(s, 64)
}

// Merge 把片段序列合并为单个文档：坐标框取所有片段框的并集，
// 内容按输入顺序拼接，外层包裹元素被剥掉。文档以并集框作为自己的
// viewBox，片段的绝对坐标无需平移即保持有效。
// 空输入产出零尺寸空文档，不携带 Inf 边界。
func Merge(fragments []vtypes.VectorFragment) vtypes.MergedDocument {
	var frame vtypes.Frame
	if len(fragments) > 0 {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, frag := range fragments {
			f := FrameOf(frag)
			minX = math.Min(minX, f.MinX)
			minY = math.Min(minY, f.MinY)
			maxX = math.Max(maxX, f.MaxX())
			maxY = math.Max(maxY, f.MaxY())
		}
		frame = vtypes.Frame{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
	}

	var buf bytes.Buffer
	canvas := floatsvg.New(&buf)
	canvas.Startview(frame.Width, frame.Height, frame.MinX, frame.MinY, frame.Width, frame.Height)
	for _, frag := range fragments {
		doc, err := parseFragment(frag.SVG)
		if err != nil {
			continue
		}
		inner := strings.TrimSpace(doc.Inner)
		if inner != "" {
			fmt.Fprintln(&buf, inner)
		}
	}
	canvas.End()

	return vtypes.MergedDocument{Frame: frame, SVG: buf.String()}
}
