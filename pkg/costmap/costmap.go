// Package costmap holds the occupancy/traversability grid consumed by the grid based
// edge scorer and the collision monitor, plus the snapshot plumbing that feeds it.
package costmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/navroute/pkg"
)

var (
	ErrInvalidCostmap = errors.New("invalid costmap")
	ErrNoCostmap      = errors.New("no costmap received yet")
)

// Costmap 2D grid of cell costs, row major (data[my*sizeX+mx]).
// world (wx, wy) -> cell ((wx-originX)/resolution, (wy-originY)/resolution)
type Costmap struct {
	sizeX, sizeY     uint32
	resolution       float64
	originX, originY float64
	data             []uint8
}

func NewCostmap(sizeX, sizeY uint32, resolution, originX, originY float64, data []uint8) (*Costmap, error) {
	if sizeX == 0 || sizeY == 0 {
		return nil, fmt.Errorf("%w: empty grid %dx%d", ErrInvalidCostmap, sizeX, sizeY)
	}
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: resolution must be positive, got %f", ErrInvalidCostmap, resolution)
	}
	n := int(sizeX) * int(sizeY)
	if data == nil {
		data = make([]uint8, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidCostmap, n, len(data))
	}
	cells := make([]uint8, n)
	copy(cells, data)
	return &Costmap{
		sizeX:      sizeX,
		sizeY:      sizeY,
		resolution: resolution,
		originX:    originX,
		originY:    originY,
		data:       cells,
	}, nil
}

// NewUniformCostmap grid with every cell set to cost
func NewUniformCostmap(sizeX, sizeY uint32, resolution, originX, originY float64, cost uint8) (*Costmap, error) {
	cm, err := NewCostmap(sizeX, sizeY, resolution, originX, originY, nil)
	if err != nil {
		return nil, err
	}
	for i := range cm.data {
		cm.data[i] = cost
	}
	return cm, nil
}

func (c *Costmap) GetSizeInCellsX() uint32 {
	return c.sizeX
}

func (c *Costmap) GetSizeInCellsY() uint32 {
	return c.sizeY
}

func (c *Costmap) GetResolution() float64 {
	return c.resolution
}

func (c *Costmap) GetOrigin() (float64, float64) {
	return c.originX, c.originY
}

// WorldToMap world coordinates to cell coordinates. false if the point is off the grid.
func (c *Costmap) WorldToMap(wx, wy float64) (uint32, uint32, bool) {
	if wx < c.originX || wy < c.originY {
		return 0, 0, false
	}
	mx := (wx - c.originX) / c.resolution
	my := (wy - c.originY) / c.resolution
	if mx >= float64(c.sizeX) || my >= float64(c.sizeY) {
		return 0, 0, false
	}
	return uint32(mx), uint32(my), true
}

// WorldToMapNoBounds like WorldToMap but returns the (possibly out of grid) cell.
func (c *Costmap) WorldToMapNoBounds(wx, wy float64) (int, int) {
	mx := int(math.Floor((wx - c.originX) / c.resolution))
	my := int(math.Floor((wy - c.originY) / c.resolution))
	return mx, my
}

// MapToWorld center of cell (mx, my) in world coordinates
func (c *Costmap) MapToWorld(mx, my uint32) (float64, float64) {
	wx := c.originX + (float64(mx)+0.5)*c.resolution
	wy := c.originY + (float64(my)+0.5)*c.resolution
	return wx, wy
}

func (c *Costmap) InBounds(mx, my int) bool {
	return mx >= 0 && my >= 0 && mx < int(c.sizeX) && my < int(c.sizeY)
}

// GetCost cost of cell (mx, my). out of grid cells are NO_INFORMATION
func (c *Costmap) GetCost(mx, my uint32) uint8 {
	if mx >= c.sizeX || my >= c.sizeY {
		return pkg.NO_INFORMATION
	}
	return c.data[my*c.sizeX+mx]
}

func (c *Costmap) SetCost(mx, my uint32, cost uint8) {
	if mx >= c.sizeX || my >= c.sizeY {
		return
	}
	c.data[my*c.sizeX+mx] = cost
}
