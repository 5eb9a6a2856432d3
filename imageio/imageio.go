// Package imageio 封装像素缓冲与编码字节之间的转换：
// 解码、PNG 编码、base64 data-URI、克隆与预缩放。
package imageio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/nfnt/resize"

	vtypes "github.com/JoniBach/vectori/type"
)

// Decode 将编码图像字节解码为 RGBA 位图
func Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA 把任意 image.Image 重绘为 RGBA 位图
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Clone 返回位图的独立副本；各阶段在破坏性修改前必须先克隆
func Clone(img *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)
	return dst
}

// Downscale 把宽度超过 maxWidth 的位图等比缩小；maxWidth<=0 时不缩放
func Downscale(img *image.RGBA, maxWidth int) *image.RGBA {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	scaled := resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	return ToRGBA(scaled)
}

// Greyscale 返回按亮度转灰的新位图，原图不变
func Greyscale(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			l := vtypes.FromColor(img.At(x, y)).Luma()
			dst.Set(x, y, vtypes.Grey(l).RGBA())
		}
	}
	return dst
}

// EncodePNG 把位图编码为 PNG 字节
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI 把位图编码为 data:image/png;base64,... 字符串
func DataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
