package report

import (
	"bytes"
	"strings"
	"testing"

	geo "github.com/kellydunn/golang-geo"
	"go.viam.com/test"

	"go.viam.com/nbvplanner/config"
)

func TestWriteRendersRoundTable(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	Write(&buf, cfg, []RoundSummary{
		{Round: 1, Iterations: 100, BestGain: 3.5, PathLength: 4, Coverage: 12.5},
		{Round: 2, Iterations: 100, BestGain: 4.1, PathLength: 5, Coverage: 18.0},
	})

	out := buf.String()
	test.That(t, strings.Contains(out, "Round"), test.ShouldBeTrue)
	test.That(t, strings.Contains(out, "18.0"), test.ShouldBeTrue)
}

func TestWriteIncludesGeofenceWhenOriginSet(t *testing.T) {
	cfg := config.Default()
	cfg.GeoOrigin = geo.NewPoint(37.4220, -122.0841)
	var buf bytes.Buffer

	Write(&buf, cfg, []RoundSummary{{Round: 1, Coverage: 5}})

	test.That(t, strings.Contains(buf.String(), "geofence"), test.ShouldBeTrue)
}

func TestWriteOmitsGeofenceWithoutOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.GeoOrigin = nil
	var buf bytes.Buffer

	Write(&buf, cfg, []RoundSummary{{Round: 1, Coverage: 5}})

	test.That(t, strings.Contains(buf.String(), "geofence"), test.ShouldBeFalse)
}
