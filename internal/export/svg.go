package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/watersim/internal/trace"
)

// TraceToSVG draws one field of a trace as a polyline. Position plots are
// scaled to the track so the walls sit on the top and bottom edges; other
// fields are scaled to their own range with some padding.
func TraceToSVG(rec *trace.Record, field string, width, height int, strokeColor string) (string, error) {
	data, err := rec.Series(field)
	if err != nil {
		return "", err
	}
	if len(data) < 2 {
		return "", fmt.Errorf("export: need at least 2 samples, got %d", len(data))
	}

	var minY, maxY float64
	if field == "position" {
		minY, maxY = 0, float64(rec.Params.Max())
	} else {
		minY, maxY = data[0], data[0]
		for _, v := range data {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
		rangeY := maxY - minY
		if rangeY == 0 {
			rangeY = 1
		}
		minY -= rangeY * 0.1
		maxY += rangeY * 0.1
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	rangeX := float64(len(data) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// zero line for signed fields
	if minY < 0 && maxY > 0 {
		y := float64(height) - (0-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-dasharray="4"/>
`, y, width, y))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, v := range data {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
`)
	sb.WriteString(fmt.Sprintf(`<text x="4" y="14" fill="#888888" font-family="monospace" font-size="12">%s, %d ticks</text>
</svg>`, field, len(data)))
	return sb.String(), nil
}
