// comply/pkg/report/heatmap.go

package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"rgehrsitz/comply/pkg/logging"
)

const (
	cellWidth   = 140
	cellHeight  = 60
	labelMargin = 110
	topMargin   = 30
)

// WriteHeatmapPNG renders the framework x asset compliance grid as a PNG.
// Cell color ramps red (0%) through yellow (50%) to green (100%).
func WriteHeatmapPNG(path string, frameworks, assets []string, cells [][]float64) error {
	if len(frameworks) == 0 || len(assets) == 0 {
		return fmt.Errorf("empty heatmap: %d frameworks, %d assets", len(frameworks), len(assets))
	}

	width := labelMargin + cellWidth*len(assets)
	height := topMargin + cellHeight*len(frameworks)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	for i, framework := range frameworks {
		y := topMargin + i*cellHeight
		drawLabel(img, 4, y+cellHeight/2, framework)
		for j := range assets {
			x := labelMargin + j*cellWidth
			cell := image.Rect(x+1, y+1, x+cellWidth-1, y+cellHeight-1)
			draw.Draw(img, cell, &image.Uniform{C: scoreColor(cells[i][j])}, image.Point{}, draw.Src)
			drawLabel(img, x+cellWidth/2-20, y+cellHeight/2, fmt.Sprintf("%.1f%%", cells[i][j]))
		}
	}
	for j, asset := range assets {
		drawLabel(img, labelMargin+j*cellWidth+8, topMargin/2, asset)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heatmap file: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode heatmap: %w", err)
	}
	logging.Logger.Info().Str("path", path).Msg("Heatmap written")
	return nil
}

// scoreColor maps 0-100 onto red -> yellow -> green.
func scoreColor(pct float64) color.RGBA {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	red := color.RGBA{R: 214, G: 69, B: 65, A: 255}
	yellow := color.RGBA{R: 244, G: 208, B: 63, A: 255}
	green := color.RGBA{R: 82, G: 179, B: 92, A: 255}
	if pct <= 50 {
		return lerpColor(red, yellow, pct/50)
	}
	return lerpColor(yellow, green, (pct-50)/50)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
