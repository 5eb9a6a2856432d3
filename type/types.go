package vtypes

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Color 表示一个 8 位 RGB 颜色
type Color struct {
	R, G, B uint8
}

// White 掩码图层的背景色
var White = Color{R: 255, G: 255, B: 255}

// FromColor 将任意 color.Color 压缩为 8 位 RGB（丢弃透明度）
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Grey 返回三通道相等的灰色
func Grey(v uint8) Color {
	return Color{R: v, G: v, B: v}
}

// Hex 返回小写 #rrggbb 形式
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luma 按 0.3R+0.59G+0.11B 计算亮度，四舍五入到 0-255
func (c Color) Luma() uint8 {
	return uint8(math.Round(0.3*float64(c.R) + 0.59*float64(c.G) + 0.11*float64(c.B)))
}

// RGBA 转回不透明的 color.RGBA
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Palette 有序颜色序列；顺序决定图层索引与合并时的绘制顺序
type Palette []Color

// Hex 返回调色板所有条目的 #rrggbb 形式
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// Lumas 返回各条目亮度对应的灰色调色板（不去重，保持索引对齐）
func (p Palette) Lumas() Palette {
	out := make(Palette, len(p))
	for i, c := range p {
		out[i] = Grey(c.Luma())
	}
	return out
}

// Layer 表示调色板某一条目对应的掩码图层；
// Mask 与源图同尺寸，不匹配的像素被置为白色
type Layer struct {
	Index int
	Color Color
	Mask  *image.RGBA
}

// VectorFragment 单个图层描摹得到的矢量片段；
// 坐标框信息（viewBox / width / height）内嵌在 SVG 文本中
type VectorFragment struct {
	Color Color
	SVG   string
}

// Frame 表示一个坐标框 { minX, minY, width, height }
type Frame struct {
	MinX, MinY    float64
	Width, Height float64
}

// MaxX 坐标框右边界
func (f Frame) MaxX() float64 { return f.MinX + f.Width }

// MaxY 坐标框下边界
func (f Frame) MaxY() float64 { return f.MinY + f.Height }

// Contains 判断 f 是否完全包含 other
func (f Frame) Contains(other Frame) bool {
	return f.MinX <= other.MinX && f.MinY <= other.MinY &&
		f.MaxX() >= other.MaxX() && f.MaxY() >= other.MaxY()
}

// MergedDocument 多个片段合并后的文档：并集坐标框 + 拼接内容
type MergedDocument struct {
	Frame Frame
	SVG   string
}

// FillMode 选择读取哪一个预先合成的变体
type FillMode int

const (
	FillColor FillMode = iota
	FillGreyscale
	FillOutline
	FillColorOutline
	FillGreyscaleOutline
)

func (m FillMode) String() string {
	switch m {
	case FillColor:
		return "color"
	case FillGreyscale:
		return "greyscale"
	case FillOutline:
		return "outline"
	case FillColorOutline:
		return "color-outline"
	case FillGreyscaleOutline:
		return "greyscale-outline"
	default:
		return "unknown"
	}
}

// ParseFillMode 从字符串解析 FillMode
func ParseFillMode(s string) (FillMode, error) {
	switch s {
	case "color":
		return FillColor, nil
	case "greyscale":
		return FillGreyscale, nil
	case "outline":
		return FillOutline, nil
	case "color-outline":
		return FillColorOutline, nil
	case "greyscale-outline":
		return FillGreyscaleOutline, nil
	}
	return 0, fmt.Errorf("unknown fill mode %q", s)
}
