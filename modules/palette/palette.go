package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF 디코더 등록
	_ "image/jpeg" // JPEG 디코더 등록
	_ "image/png"  // PNG 디코더 등록
	"log"
)

// ErrImageLoad - the uploaded file could not be decoded as an image
var ErrImageLoad = errors.New("image could not be decoded")

// Palette - the derived color pair used to parameterize a generation prompt.
// IconColor is the average logo color, BaseColor its slightly lighter complement.
type Palette struct {
	BaseColor string `json:"baseColor"`
	IconColor string `json:"iconColor"`
}

const (
	workingWidth      = 64  // sampling resolution, width capped
	alphaThreshold    = 10  // below this a pixel counts as transparent
	nearBlackMax      = 15  // max channel under this = near-black, skipped
	nearWhiteMin      = 240 // min channel over this = near-white, skipped
	baseLightnessLift = 10
)

// Extract - derive the palette from raw uploaded image bytes.
// Deterministic: identical bytes always yield the identical pair.
func Extract(data []byte) (*Palette, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	log.Printf("🔍 [Palette] Decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())

	avg := averageColor(img)

	iconHex := RGBToHex(avg)
	baseHex := RGBToHex(ComplementaryColor(avg, baseLightnessLift))

	log.Printf("🎨 [Palette] icon=%s base=%s", iconHex, baseHex)
	return &Palette{BaseColor: baseHex, IconColor: iconHex}, nil
}

// averageColor - sample the image at the working resolution and average the
// pixels that are neither transparent nor background (near-white/near-black).
// Falls back to mid-gray when nothing survives filtering so generation can
// always proceed with a neutral palette.
func averageColor(img image.Image) RGB {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return RGB{R: 127, G: 127, B: 127}
	}

	width := workingWidth
	height := srcHeight * width / srcWidth
	if height < 1 {
		height = 1
	}

	var rSum, gSum, bSum, count int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Nearest neighbor sample
			srcX := bounds.Min.X + x*srcWidth/width
			srcY := bounds.Min.Y + y*srcHeight/height
			c := color.NRGBAModel.Convert(img.At(srcX, srcY)).(color.NRGBA)

			if int(c.A) < alphaThreshold {
				continue
			}
			max := maxChannel(c.R, c.G, c.B)
			min := minChannel(c.R, c.G, c.B)
			if max < nearBlackMax || min > nearWhiteMin {
				continue
			}

			rSum += int(c.R)
			gSum += int(c.G)
			bSum += int(c.B)
			count++
		}
	}

	if count == 0 {
		return RGB{R: 127, G: 127, B: 127}
	}
	return RGB{
		R: (rSum + count/2) / count,
		G: (gSum + count/2) / count,
		B: (bSum + count/2) / count,
	}
}

func maxChannel(r, g, b uint8) int {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return int(m)
}

func minChannel(r, g, b uint8) int {
	m := r
	if g < m {
		m = g
	}
	if b < m {
		m = b
	}
	return int(m)
}
