package geo

import (
	"math"
	"testing"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(da.NewCoordinates(0, 0), da.NewCoordinates(3, 4)), 1e-9)
	assert.Equal(t, 0.0, Distance(da.NewCoordinates(1, 1), da.NewCoordinates(1, 1)))
}

func TestNormalizedDot(t *testing.T) {
	assert.InDelta(t, 1.0, NormalizedDot(1, 0, 5, 0), 1e-9)
	assert.InDelta(t, -1.0, NormalizedDot(1, 0, -2, 0), 1e-9)
	assert.InDelta(t, 0.0, NormalizedDot(1, 0, 0, 3), 1e-9)
	assert.InDelta(t, math.Sqrt2/2, NormalizedDot(1, 0, 1, 1), 1e-9)
	assert.Equal(t, 0.0, NormalizedDot(0, 0, 1, 1))
}

func TestFindClosestPoint(t *testing.T) {
	start := da.NewCoordinates(0, 0)
	end := da.NewCoordinates(10, 0)

	testCases := []struct {
		name string
		p    da.Coordinates
		want da.Coordinates
	}{
		{name: "projects inside", p: da.NewCoordinates(4, 3), want: da.NewCoordinates(4, 0)},
		{name: "before start", p: da.NewCoordinates(-5, 1), want: start},
		{name: "after end", p: da.NewCoordinates(20, -1), want: end},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := FindClosestPoint(tt.p, start, end)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}

	assert.Equal(t, start, FindClosestPoint(da.NewCoordinates(3, 3), start, start))
}

func TestBackoutPoint(t *testing.T) {
	got := BackoutPoint(da.NewCoordinates(0, 0), da.NewCoordinates(0, 10), 2.5)
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 2.5, got.Y, 1e-9)
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []da.Coordinates{{X: 0, Y: 0}, {X: 1.5, Y: -2.25}, {X: 10.12345, Y: 3}}
	encoded := PolylineFromCoords(coords)
	assert.NotEmpty(t, encoded)

	decoded, err := CoordsFromPolyline(encoded)
	assert.NoError(t, err)
	assert.Len(t, decoded, len(coords))
	for i := range coords {
		assert.InDelta(t, coords[i].X, decoded[i].X, 1e-5)
		assert.InDelta(t, coords[i].Y, decoded[i].Y, 1e-5)
	}

	assert.Equal(t, "", PolylineFromCoords(nil))
}
