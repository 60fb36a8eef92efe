package geo

import (
	"github.com/golang/geo/r2"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
)

// route graph coordinates are planar world-frame coordinates (meters), not lat/lon

func ToPoint(c da.Coordinates) r2.Point {
	return r2.Point{X: c.X, Y: c.Y}
}

func ToCoordinates(p r2.Point) da.Coordinates {
	return da.NewCoordinates(p.X, p.Y)
}

// Distance euclidean distance between a & b
func Distance(a, b da.Coordinates) float64 {
	return ToPoint(b).Sub(ToPoint(a)).Norm()
}

// NormalizedDot dot product of the normalized vectors (ax, ay) & (bx, by). 0 if either is a zero vector
func NormalizedDot(ax, ay, bx, by float64) float64 {
	a := r2.Point{X: ax, Y: ay}
	b := r2.Point{X: bx, Y: by}
	if a.Norm() < 1e-9 || b.Norm() < 1e-9 {
		return 0.0
	}
	return a.Normalize().Dot(b.Normalize())
}

// FindClosestPoint closest point to p on segment start-end
func FindClosestPoint(p, start, end da.Coordinates) da.Coordinates {
	s := ToPoint(start)
	seg := ToPoint(end).Sub(s)
	lenSq := seg.Dot(seg)
	if lenSq < 1e-12 {
		return start
	}

	t := ToPoint(p).Sub(s).Dot(seg) / lenSq
	if t <= 0.0 {
		return start
	}
	if t >= 1.0 {
		return end
	}
	return ToCoordinates(s.Add(seg.Mul(t)))
}

// BackoutPoint point at distance dist from start towards end
func BackoutPoint(start, end da.Coordinates, dist float64) da.Coordinates {
	s := ToPoint(start)
	dir := ToPoint(end).Sub(s)
	if dir.Norm() < 1e-6 {
		return start
	}
	return ToCoordinates(s.Add(dir.Normalize().Mul(dist)))
}
