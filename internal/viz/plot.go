package viz

import (
	"math"

	"github.com/san-kum/pvsim/internal/thermo"
)

// Plot maps the P-V plane onto a block of terminal cells. Volume runs left
// to right and pressure bottom to top.
type Plot struct {
	Bounds        thermo.Bounds
	Left, Top     int // screen offset of the first cell
	Width, Height int // size in cells
}

// ToSub maps q to canvas sub-pixel coordinates.
func (p Plot) ToSub(q thermo.Query) (int, int) {
	sw, sh := float64(p.Width*2-1), float64(p.Height*4-1)
	fx := (q.Volume - p.Bounds.VMin) / p.Bounds.VRange()
	fy := (q.Pressure - p.Bounds.PMin) / p.Bounds.PRange()
	return int(math.Round(fx * sw)), int(math.Round((1 - fy) * sh))
}

// FromScreen maps a terminal cell to the point at its center. inside is
// false when the cell lies outside the plot; the returned query is still
// extrapolated so a drag past the edge can be clamped by the store.
func (p Plot) FromScreen(x, y int) (q thermo.Query, inside bool) {
	col, row := x-p.Left, y-p.Top
	inside = col >= 0 && row >= 0 && col < p.Width && row < p.Height

	fx := (float64(col) + 0.5) / float64(p.Width)
	fy := (float64(row) + 0.5) / float64(p.Height)
	q = thermo.Query{
		Volume:   p.Bounds.VMin + fx*p.Bounds.VRange(),
		Pressure: p.Bounds.PMax - fy*p.Bounds.PRange(),
	}
	return q, inside
}

// DrawCurve plots c onto canvas with the given ink, skipping samples that
// leave the visible range.
func (p Plot) DrawCurve(canvas *Canvas, c thermo.Curve, ink int) {
	var (
		px, py int
		have   bool
	)
	for _, pt := range c.Points {
		q := thermo.Query{Pressure: pt.Pressure, Volume: pt.Volume}
		if !p.Bounds.Contains(q) {
			have = false
			continue
		}
		x, y := p.ToSub(q)
		if have {
			canvas.DrawLine(px, py, x, y, ink)
		} else {
			canvas.SetInk(x, y, ink)
		}
		px, py, have = x, y, true
	}
}

// DrawMarker draws a small cross at q.
func (p Plot) DrawMarker(canvas *Canvas, q thermo.Query, ink int) {
	x, y := p.ToSub(q)
	canvas.DrawLine(x-2, y, x+2, y, ink)
	canvas.DrawLine(x, y-2, x, y+2, ink)
}
