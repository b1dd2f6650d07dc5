package views

import (
	"math"

	"opsdesk/pkg/domain"
)

// statusPalette is cycled over distribution segments in encounter order.
var statusPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6"}

// StatusSlice is one segment of the leads-by-status distribution.
type StatusSlice struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

// DonutArc is a rendered pie segment: the slice plus its angular extent, with
// angle 0 at twelve o'clock and arcs running clockwise.
type DonutArc struct {
	StatusSlice
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
}

// StatusDistribution groups leads by status in first-encounter order. Each
// segment gets a rounded whole-number percentage and a palette color by
// position, wrapping when statuses outnumber the palette. An empty lead set
// yields an empty slice.
func StatusDistribution(leads []domain.Lead) []StatusSlice {
	counts := map[domain.LeadStatus]int{}
	var order []domain.LeadStatus
	for _, l := range leads {
		if _, seen := counts[l.Status]; !seen {
			order = append(order, l.Status)
		}
		counts[l.Status]++
	}
	total := len(leads)
	slices := make([]StatusSlice, 0, len(order))
	for i, status := range order {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(counts[status]) / float64(total) * 100))
		}
		slices = append(slices, StatusSlice{
			Name:       string(status),
			Value:      counts[status],
			Percentage: pct,
			Color:      statusPalette[i%len(statusPalette)],
		})
	}
	return slices
}

// DonutArcs assigns each slice its angular span: percentage of 360 degrees,
// each arc starting where the previous one ended. Rounded percentages mean the
// arcs need not close the full circle exactly.
func DonutArcs(slices []StatusSlice) []DonutArc {
	arcs := make([]DonutArc, 0, len(slices))
	start := 0.0
	for _, s := range slices {
		span := float64(s.Percentage) / 100 * 360
		arcs = append(arcs, DonutArc{StatusSlice: s, StartAngle: start, EndAngle: start + span})
		start += span
	}
	return arcs
}
