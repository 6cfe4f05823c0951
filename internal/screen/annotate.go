package screen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hamen/android-mcp/internal/model"
)

var (
	labelColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Labeled reports whether a node is worth drawing: it has bounds and some
// non-empty text, description or resource id.
func Labeled(n model.FlatNode) bool {
	if n.Bounds == nil {
		return false
	}
	for _, s := range []*string{n.Text, n.ContentDesc, n.ResourceID} {
		if s != nil && *s != "" {
			return true
		}
	}
	return false
}

// Annotate draws each node's bounds and its "(x,y)" tap point onto a copy
// of img. Bounds are device pixels, which are image pixels for a full-size
// screenshot. Box color cycles with tree depth.
func Annotate(img image.Image, nodes []model.FlatNode) *image.RGBA {
	rgba := toRGBA(img)
	for _, n := range nodes {
		if n.Bounds == nil {
			continue
		}
		r, err := model.ParseRect(*n.Bounds)
		if err != nil {
			continue
		}
		drawRectangle(rgba, r.X1, r.Y1, r.X2, r.Y2, depthColor(n.Depth))
		c := r.Center()
		drawTextWithOutline(rgba, fmt.Sprintf("(%d,%d)", c.X, c.Y), c.X, c.Y, labelColor, outlineColor)
	}
	return rgba
}

// depthColor spreads depths around the hue wheel by the golden angle so
// neighbouring levels stay distinguishable.
func depthColor(depth int) color.Color {
	hue := math.Mod(float64(depth)*137.508, 360)
	return colorful.Hsv(hue, 0.85, 1.0).Clamped()
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// drawRectangle draws a two pixel outline, clipped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < 2; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+t, c)
			img.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+t, y, c)
			img.Set(r.Max.X-1-t, y, c)
		}
	}
}

// drawTextWithOutline centers text on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outline color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	// Dot is the baseline origin; Face7x13 has an ascent of 11.
	originX := x - width/2
	originY := y + face.Ascent/2

	d := &font.Drawer{Dst: img, Face: face}
	d.Src = image.NewUniform(outline)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(originX+dx, originY+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(textColor)
	d.Dot = fixed.P(originX, originY)
	d.DrawString(text)
}
