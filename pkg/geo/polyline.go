package geo

import (
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encoded polyline of coords, (y, x) pairs like (lat, lon). 5 decimal places
func PolylineFromCoords(coords []da.Coordinates) string {
	pairs := make([][]float64, 0, len(coords))
	for _, c := range coords {
		pairs = append(pairs, []float64{c.Y, c.X})
	}
	return string(polyline.EncodeCoords(pairs))
}

func CoordsFromPolyline(s string) ([]da.Coordinates, error) {
	pairs, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	coords := make([]da.Coordinates, 0, len(pairs))
	for _, p := range pairs {
		coords = append(coords, da.NewCoordinates(p[1], p[0]))
	}
	return coords, nil
}
