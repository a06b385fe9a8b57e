// Package animate assembles ordered frame images into GIF and MP4 files.
package animate

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
)

// Delay converts a frame rate into GIF delay units (hundredths of a second).
func Delay(fps int) int {
	if fps <= 0 {
		fps = 8
	}
	d := 100 / fps
	if d < 1 {
		d = 1
	}
	return d
}

// GIF encodes the PNG frames, in the given order, into an animated GIF at
// out that loops forever.
func GIF(frames []string, out string, fps int) error {
	if len(frames) == 0 {
		return fmt.Errorf("animate: no frames to encode")
	}

	anim := &gif.GIF{LoopCount: 0}
	delay := Delay(fps)
	for _, path := range frames {
		img, err := decodePNG(path)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, quantize(img))
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("animate: encode %s: %w", out, err)
	}
	return f.Close()
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("animate: decode %s: %w", path, err)
	}
	return img, nil
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	return p
}
