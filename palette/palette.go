package palette

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sort"

	"github.com/cenkalti/dominantcolor"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	vtypes "github.com/JoniBach/vectori/type"
)

// Method 选择聚类调色板的提取策略
type Method int

const (
	MethodMedianCut Method = iota
	MethodKMeans
	MethodDominant
)

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	case MethodDominant:
		return "dominantcolor"
	default:
		return "mediancut"
	}
}

// Build 按策略提取 k 色聚类调色板
func Build(method Method, img image.Image, k int) (vtypes.Palette, error) {
	switch method {
	case MethodKMeans:
		return BuildKMeansPalette(img, k)
	case MethodDominant:
		return BuildDominantPalette(img, k), nil
	case MethodMedianCut:
		return BuildClusteredPalette(img, k), nil
	}
	return nil, fmt.Errorf("unknown palette method %d", method)
}

// pixel 表示一个像素的 RGB 值
type pixel struct {
	r, g, b int
}

// box 表示颜色盒子
type box struct {
	pixels     []pixel
	rMin, rMax int
	gMin, gMax int
	bMin, bMax int
}

// 计算盒子范围
func (b *box) calcRange() {
	if len(b.pixels) == 0 {
		return
	}
	b.rMin, b.rMax = 255, 0
	b.gMin, b.gMax = 255, 0
	b.bMin, b.bMax = 255, 0
	for _, p := range b.pixels {
		b.rMin = min(b.rMin, p.r)
		b.rMax = max(b.rMax, p.r)
		b.gMin = min(b.gMin, p.g)
		b.gMax = max(b.gMax, p.g)
		b.bMin = min(b.bMin, p.b)
		b.bMax = max(b.bMax, p.b)
	}
}

// BuildClusteredPalette 执行中位切分颜色量化：沿范围最大的通道递归
// 分割颜色空间直到得到 k 个盒子，取每个盒子的平均色。
// 同一输入与 k 的结果是确定的。
func BuildClusteredPalette(img image.Image, k int) vtypes.Palette {
	if k <= 0 {
		return vtypes.Palette{}
	}

	bounds := img.Bounds()
	var pixels []pixel

	// 收集所有像素
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := vtypes.FromColor(img.At(x, y))
			pixels = append(pixels, pixel{r: int(c.R), g: int(c.G), b: int(c.B)})
		}
	}
	if len(pixels) == 0 {
		return vtypes.Palette{}
	}

	initial := &box{pixels: pixels}
	initial.calcRange()
	boxes := []*box{initial}

	// 不断分割范围最大的盒子
	for len(boxes) < k {
		var toSplit *box
		maxRange := -1
		for _, bx := range boxes {
			r := max(bx.rMax-bx.rMin, bx.gMax-bx.gMin, bx.bMax-bx.bMin)
			if r > maxRange {
				maxRange = r
				toSplit = bx
			}
		}
		if toSplit == nil || len(toSplit.pixels) < 2 {
			break
		}

		rRange := toSplit.rMax - toSplit.rMin
		gRange := toSplit.gMax - toSplit.gMin
		bRange := toSplit.bMax - toSplit.bMin

		// 沿范围最大的通道排序后从中位切开
		sort.Slice(toSplit.pixels, func(i, j int) bool {
			switch {
			case rRange >= gRange && rRange >= bRange:
				return toSplit.pixels[i].r < toSplit.pixels[j].r
			case gRange >= rRange && gRange >= bRange:
				return toSplit.pixels[i].g < toSplit.pixels[j].g
			default:
				return toSplit.pixels[i].b < toSplit.pixels[j].b
			}
		})

		median := len(toSplit.pixels) / 2
		box1 := &box{pixels: append([]pixel{}, toSplit.pixels[:median]...)}
		box2 := &box{pixels: append([]pixel{}, toSplit.pixels[median:]...)}
		box1.calcRange()
		box2.calcRange()

		for i, bx := range boxes {
			if bx == toSplit {
				boxes = append(boxes[:i], append([]*box{box1, box2}, boxes[i+1:]...)...)
				break
			}
		}
	}

	// 每个盒子取平均色
	result := make(vtypes.Palette, 0, k)
	for _, bx := range boxes {
		var rSum, gSum, bSum int
		for _, p := range bx.pixels {
			rSum += p.r
			gSum += p.g
			bSum += p.b
		}
		n := len(bx.pixels)
		if n == 0 {
			continue
		}
		result = append(result, vtypes.Color{
			R: uint8(rSum / n),
			G: uint8(gSum / n),
			B: uint8(bSum / n),
		})
	}

	// 盒子数到不了 k 时（颜色太少）重复最后一色补齐
	for len(result) < k {
		result = append(result, result[len(result)-1])
	}
	return result
}

// BuildKMeansPalette 用 k-means 聚类提取 k 色调色板
func BuildKMeansPalette(img image.Image, k int) (vtypes.Palette, error) {
	if k <= 0 {
		return vtypes.Palette{}, nil
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return vtypes.Palette{}, nil
	}

	// 大图抽样，避免 kmeans 失控
	const maxSamples = 12000
	step := 1
	if area := b.Dx() * b.Dy(); area > maxSamples {
		step = int(math.Sqrt(float64(area)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return vtypes.Palette{}, nil
	}

	workK := min(k, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	// 按簇大小排序，主色在前
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	result := make(vtypes.Palette, 0, k)
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := col.RGB255()
		result = append(result, vtypes.Color{R: r, G: g, B: b})
	}
	for len(result) > 0 && len(result) < k {
		result = append(result, result[len(result)-1])
	}
	return result, nil
}

// BuildDominantPalette 按出现权重提取 k 个主色
func BuildDominantPalette(img image.Image, k int) vtypes.Palette {
	if k <= 0 {
		return vtypes.Palette{}
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	result := make(vtypes.Palette, 0, k)
	for _, c := range candidates {
		col := vtypes.FromColor(c.RGBA)
		if slices.Contains(result, col) {
			continue
		}
		result = append(result, col)
		if len(result) == k {
			break
		}
	}
	for len(result) > 0 && len(result) < k {
		result = append(result, result[len(result)-1])
	}
	return result
}

// ExtractColorPalette 线性扫描收集图中每一个不同的颜色，
// 顺序为首次出现顺序，不聚类、不设上限
func ExtractColorPalette(img image.Image) vtypes.Palette {
	bounds := img.Bounds()
	seen := make(map[vtypes.Color]struct{})
	var result vtypes.Palette
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := vtypes.FromColor(img.At(x, y))
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}
	return result
}

// ExtractLumaPalette 线性扫描收集图中每一个不同的亮度值，
// 以等通道灰色形式返回，顺序为首次出现顺序
func ExtractLumaPalette(img image.Image) vtypes.Palette {
	bounds := img.Bounds()
	seen := make(map[uint8]struct{})
	var result vtypes.Palette
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			l := vtypes.FromColor(img.At(x, y)).Luma()
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			result = append(result, vtypes.Grey(l))
		}
	}
	return result
}

// Nearest 返回调色板中与 c 欧氏距离最近的条目；
// 距离相同取先出现的条目。空调色板时原样返回 c。
func Nearest(c vtypes.Color, p vtypes.Palette) vtypes.Color {
	if len(p) == 0 {
		return c
	}
	best := p[0]
	bestDist := math.MaxFloat64
	for _, entry := range p {
		dr := float64(int(c.R) - int(entry.R))
		dg := float64(int(c.G) - int(entry.G))
		db := float64(int(c.B) - int(entry.B))
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = entry
		}
	}
	return best
}

// SortByBrightness 按线性 RGB 亮度从暗到亮排序（背景色在前）
func SortByBrightness(p vtypes.Palette) {
	slices.SortStableFunc(p, func(a, b vtypes.Color) int {
		ya := linearLuminance(a)
		yb := linearLuminance(b)
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		return 0
	})
}

func linearLuminance(c vtypes.Color) float64 {
	col, _ := colorful.MakeColor(c.RGBA())
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
