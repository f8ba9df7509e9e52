package video

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"

	"minutemind/config"
)

// writeSceneFrame renders the visual track for one scene: the scene image
// scaled to fit the target frame and centered on the backdrop, or a solid
// backdrop when no image exists or image processing fails.
func (c *Compositor) writeSceneFrame(framePath, imageURL string) error {
	canvas := newBackdrop(config.FrameWidth, config.FrameHeight)

	if imageURL != "" {
		if err := c.drawSceneImage(canvas, imageURL); err != nil {
			log.Printf("[video] image unusable, using solid frame: %v", err)
			canvas = newBackdrop(config.FrameWidth, config.FrameHeight)
		}
	}

	out, err := os.Create(framePath)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, canvas)
}

func (c *Compositor) drawSceneImage(canvas *image.RGBA, imageURL string) error {
	f, err := os.Open(c.store.ResolveURL(imageURL))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := canvas.Bounds()
	srcBounds := src.Bounds()
	if srcBounds.Dx() == 0 || srcBounds.Dy() == 0 {
		return fmt.Errorf("empty image")
	}

	// Scale to fit while preserving aspect ratio, then center.
	scaleX := float64(bounds.Dx()) / float64(srcBounds.Dx())
	scaleY := float64(bounds.Dy()) / float64(srcBounds.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	width := int(float64(srcBounds.Dx()) * scale)
	height := int(float64(srcBounds.Dy()) * scale)
	x0 := (bounds.Dx() - width) / 2
	y0 := (bounds.Dy() - height) / 2

	target := image.Rect(x0, y0, x0+width, y0+height)
	xdraw.CatmullRom.Scale(canvas, target, src, srcBounds, xdraw.Over, nil)
	return nil
}

func newBackdrop(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{R: config.BackdropR, G: config.BackdropG, B: config.BackdropB, A: 255}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return canvas
}
