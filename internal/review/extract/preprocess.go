package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

const (
	// minOCRWidth: images narrower than this are upscaled before OCR.
	minOCRWidth = 1000
	upscale     = 2
)

// PreprocessForOCR prepares an encoded image for recognition: grayscale,
// contrast stretch, binarization, light sharpening and upscaling of small
// scans. Returns the processed image re-encoded as PNG.
func PreprocessForOCR(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(src)
	if gray.Bounds().Dx() < minOCRWidth {
		gray = upscaleGray(gray, upscale)
	}
	stretchContrast(gray)
	sharpened := sharpen(gray)
	binarize(sharpened)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sharpened); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), src, b.Min, xdraw.Src)
	return gray
}

func upscaleGray(src *image.Gray, factor int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// stretchContrast maps the observed intensity range onto the full 0-255 span.
func stretchContrast(img *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, p := range img.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if max <= min {
		return
	}
	span := float64(max - min)
	for i, p := range img.Pix {
		img.Pix[i] = uint8(float64(p-min) / span * 255)
	}
}

// sharpen applies a mild 3x3 unsharp kernel.
func sharpen(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	copy(out.Pix, img.Pix)

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			center := int(img.GrayAt(x, y).Y) * 5
			neighbors := int(img.GrayAt(x-1, y).Y) + int(img.GrayAt(x+1, y).Y) +
				int(img.GrayAt(x, y-1).Y) + int(img.GrayAt(x, y+1).Y)
			v := center - neighbors
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return out
}

// binarize thresholds at the mean intensity. Tesseract copes better with
// clean black-on-white input than with gray scans.
func binarize(img *image.Gray) {
	if len(img.Pix) == 0 {
		return
	}
	var sum int
	for _, p := range img.Pix {
		sum += int(p)
	}
	threshold := uint8(sum / len(img.Pix))
	for i, p := range img.Pix {
		if p > threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}
