package svgmerge

import (
	"regexp"

	vtypes "github.com/JoniBach/vectori/type"
)

var (
	fillAttrRe    = regexp.MustCompile(`fill="[^"]*"`)
	strokeAttrRe  = regexp.MustCompile(`stroke="[^"]*"`)
	strokeWidthRe = regexp.MustCompile(`\s*stroke-width="[^"]*"`)
	pathOpenRe    = regexp.MustCompile(`<path\s`)
)

// Outline 把填充片段改写为纯描边样式：所有 fill 变为 none，
// 所有 stroke 变为固定的黑色 1 号描边。只改属性，不动几何，
// 重复应用的结果与应用一次相同。
func Outline(frag vtypes.VectorFragment) vtypes.VectorFragment {
	s := frag.SVG
	s = fillAttrRe.ReplaceAllString(s, `fill="none"`)
	s = strokeWidthRe.ReplaceAllString(s, "")
	if strokeAttrRe.MatchString(s) {
		s = strokeAttrRe.ReplaceAllString(s, `stroke="#000000" stroke-width="1"`)
	} else {
		s = pathOpenRe.ReplaceAllString(s, `<path stroke="#000000" stroke-width="1" `)
	}
	return vtypes.VectorFragment{Color: frag.Color, SVG: s}
}

// OutlineAll 对一批片段逐个改写，保持索引对齐
func OutlineAll(fragments []vtypes.VectorFragment) []vtypes.VectorFragment {
	out := make([]vtypes.VectorFragment, len(fragments))
	for i, frag := range fragments {
		out[i] = Outline(frag)
	}
	return out
}
