package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pvsim/internal/thermo"
)

// Series is one polyline on the P-V plane.
type Series struct {
	Name   string
	Color  string
	Points []thermo.Point
}

var curveColors = map[thermo.Process]string{
	thermo.Isothermal: "#ff6b6b",
	thermo.Adiabatic:  "#4dabf7",
	thermo.Isobaric:   "#69db7c",
	thermo.Isochoric:  "#ffd43b",
}

// CurveSeries converts engine curves to series with the default palette.
func CurveSeries(curves []thermo.Curve) []Series {
	out := make([]Series, len(curves))
	for i, c := range curves {
		out[i] = Series{Name: c.Process.String(), Color: curveColors[c.Process], Points: c.Points}
	}
	return out
}

// Options controls PlaneToSVG.
type Options struct {
	Width, Height int
	// Marker, when set, is drawn as a dot at the current state.
	Marker *thermo.Query
}

// PlaneToSVG writes series plotted over the bounds as a standalone SVG.
// Points outside the bounds break the polyline.
func PlaneToSVG(w io.Writer, b thermo.Bounds, series []Series, opts Options) error {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}

	project := func(q thermo.Query) (float64, float64) {
		x := (q.Volume - b.VMin) / b.VRange() * float64(width)
		y := float64(height) - (q.Pressure-b.PMin)/b.PRange()*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		d := pathData(s.Points, b, project)
		if d == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"><title>%s</title></path>
`, s.Color, d, s.Name))
	}

	if opts.Marker != nil {
		x, y := project(*opts.Marker)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#ffffff"/>
`, x, y))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func pathData(points []thermo.Point, b thermo.Bounds, project func(thermo.Query) (float64, float64)) string {
	var sb strings.Builder
	pen := false
	for _, p := range points {
		q := thermo.Query{Pressure: p.Pressure, Volume: p.Volume}
		if !b.Contains(q) {
			pen = false
			continue
		}
		x, y := project(q)
		cmd := "L"
		if !pen {
			cmd = "M"
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", cmd, x, y))
		pen = true
	}
	return sb.String()
}
