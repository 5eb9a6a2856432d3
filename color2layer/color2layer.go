// Package color2layer 把位图按调色板拆分为互相独立的掩码图层
package color2layer

import (
	"image"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/JoniBach/vectori/imageio"
	"github.com/JoniBach/vectori/palette"
	vtypes "github.com/JoniBach/vectori/type"
)

// DefaultLumaTolerance 亮度带默认容差
const DefaultLumaTolerance = 5

// Quantize 把每个像素替换为调色板中最近的颜色，在克隆上操作，原图不变
func Quantize(img *image.RGBA, pal vtypes.Palette) *image.RGBA {
	out := imageio.Clone(img)
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := vtypes.FromColor(out.At(x, y))
			out.Set(x, y, palette.Nearest(c, pal).RGBA())
		}
	}
	return out
}

// SeparateByColor 为调色板每个条目生成一个掩码图层：
// 像素与条目逐通道精确相等则保留，否则置白。
// 图层与调色板按索引对齐；每个图层任务持有自己的克隆。
func SeparateByColor(img *image.RGBA, pal vtypes.Palette) []vtypes.Layer {
	layers := make([]vtypes.Layer, len(pal))

	var wg sync.WaitGroup
	for i, entry := range pal {
		wg.Add(1)
		go func(idx int, target vtypes.Color) {
			defer wg.Done()
			mask := imageio.Clone(img)
			bounds := mask.Bounds()
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					if vtypes.FromColor(mask.At(x, y)) != target {
						mask.Set(x, y, vtypes.White.RGBA())
					}
				}
			}
			layers[idx] = vtypes.Layer{Index: idx, Color: target, Mask: mask}
		}(i, entry)
	}
	wg.Wait()

	log.Debugf("separated %d color layers", len(layers))
	return layers
}

// SeparateByLuma 为每个目标亮度生成一个容差带掩码图层：
// |像素亮度-目标| <= tolerance 的像素吸附为目标灰色，其余置白。
// 容差带可以重叠，同一像素可能被多个图层认领，图层不是对图像的划分。
func SeparateByLuma(img *image.RGBA, lumaPal vtypes.Palette, tolerance int) []vtypes.Layer {
	if tolerance < 0 {
		tolerance = DefaultLumaTolerance
	}
	layers := make([]vtypes.Layer, len(lumaPal))

	var wg sync.WaitGroup
	for i, entry := range lumaPal {
		wg.Add(1)
		go func(idx int, target vtypes.Color) {
			defer wg.Done()
			mask := imageio.Clone(img)
			bounds := mask.Bounds()
			t := int(target.Luma())
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					l := int(vtypes.FromColor(mask.At(x, y)).Luma())
					d := l - t
					if d < 0 {
						d = -d
					}
					if d <= tolerance {
						mask.Set(x, y, target.RGBA())
					} else {
						mask.Set(x, y, vtypes.White.RGBA())
					}
				}
			}
			layers[idx] = vtypes.Layer{Index: idx, Color: target, Mask: mask}
		}(i, entry)
	}
	wg.Wait()

	log.Debugf("separated %d luma layers (tolerance %d)", len(layers), tolerance)
	return layers
}
