package stubservice

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
)

const defaultImageSize = 64

// RenderPlaceholder draws a deterministic gradient PNG derived from seed.
func RenderPlaceholder(seed string, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid image size %d", size)
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()
	sky := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum>>16) | 0x80, A: 0xff}
	meadow := color.RGBA{R: uint8(sum >> 24), G: uint8(sum>>32) | 0x80, B: uint8(sum >> 40), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		c := blend(sky, meadow, y, size)
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func blend(a, b color.RGBA, step, steps int) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(steps-step) + int(y)*step) / steps)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
