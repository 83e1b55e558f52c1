// Package export renders canvases and stored trajectories as SVG.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/fzx/internal/experiment"
	"github.com/san-kum/fzx/internal/viz"
)

var ErrBadAxes = errors.New("export: axes must be two distinct values in 0..2")

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot in
// the theme color of the cell's ink.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := theme.InkColor(canvas.Ink[row][col])

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws one polyline per body through its recorded
// positions projected onto axes (0=x, 1=y, 2=z). All bodies share one
// scale so relative distances survive.
func TrajectoriesToSVG(bodies []string, frames []experiment.Frame, axes [2]int, width, height int, theme viz.Theme) (string, error) {
	if axes[0] == axes[1] || axes[0] < 0 || axes[0] > 2 || axes[1] < 0 || axes[1] > 2 {
		return "", ErrBadAxes
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, f := range frames {
		for _, p := range f.Positions {
			minX, maxX = math.Min(minX, p[axes[0]]), math.Max(maxX, p[axes[0]])
			minY, maxY = math.Min(minY, p[axes[1]]), math.Max(maxY, p[axes[1]])
		}
	}
	if math.IsInf(minX, 1) {
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for b, name := range bodies {
		var pts []string
		for _, f := range frames {
			if b >= len(f.Positions) {
				continue
			}
			p := f.Positions[b]
			x := (p[axes[0]] - minX) / rangeX * float64(width)
			y := float64(height) - (p[axes[1]]-minY)/rangeY*float64(height)
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		if len(pts) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<polyline id="%s" fill="none" stroke="%s" stroke-width="1.5" points="%s"/>
`, name, theme.BodyColor(b), strings.Join(pts, " ")))
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}
