// Package report renders a human-readable session summary: a coverage/round
// table (go-pretty) and, when the workspace has a real-world anchor, a
// geofence line built from it (kellydunn/golang-geo). This is the
// expansion's telemetry surface (§4.9 of SPEC_FULL.md) — the core planner
// emits no text itself.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	geo "github.com/kellydunn/golang-geo"

	"go.viam.com/nbvplanner/config"
)

// RoundSummary is one row of the session report.
type RoundSummary struct {
	Round      int
	Iterations int
	BestGain   float64
	PathLength int
	Coverage   float64
}

// Write renders rounds as a table to w, followed by an optional geofence
// line when cfg.GeoOrigin is set.
func Write(w io.Writer, cfg *config.Config, rounds []RoundSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Round", "Iterations", "Best Gain", "Path Length", "Coverage %"})
	for _, r := range rounds {
		t.AppendRow(table.Row{r.Round, r.Iterations, fmt.Sprintf("%.3f", r.BestGain), r.PathLength, fmt.Sprintf("%.1f", r.Coverage)})
	}
	t.Render()

	if cfg.GeoOrigin != nil {
		fmt.Fprintln(w, geofenceLine(cfg))
	}

	if len(rounds) > 0 {
		last := rounds[len(rounds)-1]
		highlight := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(w, "final coverage: %s\n", highlight(fmt.Sprintf("%.1f%%", last.Coverage)))
	}
}

// geofenceLine describes the workspace AABB as a human-readable geofence
// anchored at cfg.GeoOrigin, using golang-geo's haversine-based distance-to
// helper to report the fence's approximate footprint in meters.
func geofenceLine(cfg *config.Config) string {
	origin := cfg.GeoOrigin
	corner := geo.NewPoint(
		origin.Lat()+metersToDegreesLat(cfg.MaxY-cfg.MinY),
		origin.Lng()+metersToDegreesLng(cfg.MaxX-cfg.MinX, origin.Lat()),
	)
	spanMeters := origin.GreatCircleDistance(corner) * 1000
	return fmt.Sprintf(
		"geofence: origin (%.6f, %.6f), workspace span ~%.1fm diagonal",
		origin.Lat(), origin.Lng(), spanMeters,
	)
}

const metersPerDegreeLat = 111320.0

func metersToDegreesLat(meters float64) float64 {
	return meters / metersPerDegreeLat
}

func metersToDegreesLng(meters, atLatDegrees float64) float64 {
	// Longitude degrees shrink toward the poles; approximate with a cosine
	// correction rather than assuming a flat-earth equirectangular grid.
	latRad := atLatDegrees * (math.Pi / 180.0)
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(latRad)
	if metersPerDegreeLng == 0 {
		return 0
	}
	return meters / metersPerDegreeLng
}
