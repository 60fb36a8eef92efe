package costmap

// LineIterator bresenham traversal of every cell between (x0, y0) and (x1, y1), both ends included.
//
//	for it := NewLineIterator(x0, y0, x1, y1); it.IsValid(); it.Advance() {
//		cost := cm.GetCost(uint32(it.GetX()), uint32(it.GetY()))
//	}
type LineIterator struct {
	x, y                int
	xInc1, xInc2        int
	yInc1, yInc2        int
	den, num, numAdd    int
	numPixels, curPixel int
}

func NewLineIterator(x0, y0, x1, y1 int) *LineIterator {
	it := &LineIterator{x: x0, y: y0}

	deltaX := abs(x1 - x0)
	deltaY := abs(y1 - y0)

	if x1 >= x0 {
		it.xInc1, it.xInc2 = 1, 1
	} else {
		it.xInc1, it.xInc2 = -1, -1
	}
	if y1 >= y0 {
		it.yInc1, it.yInc2 = 1, 1
	} else {
		it.yInc1, it.yInc2 = -1, -1
	}

	if deltaX >= deltaY {
		// x is the driving axis
		it.xInc1 = 0
		it.yInc2 = 0
		it.den = deltaX
		it.num = deltaX / 2
		it.numAdd = deltaY
		it.numPixels = deltaX
	} else {
		it.xInc2 = 0
		it.yInc1 = 0
		it.den = deltaY
		it.num = deltaY / 2
		it.numAdd = deltaX
		it.numPixels = deltaY
	}
	return it
}

func (it *LineIterator) IsValid() bool {
	return it.curPixel <= it.numPixels
}

func (it *LineIterator) Advance() {
	it.num += it.numAdd
	if it.num >= it.den {
		it.num -= it.den
		it.x += it.xInc1
		it.y += it.yInc1
	}
	it.x += it.xInc2
	it.y += it.yInc2
	it.curPixel++
}

func (it *LineIterator) GetX() int {
	return it.x
}

func (it *LineIterator) GetY() int {
	return it.y
}

func (it *LineIterator) GetLineLength() int {
	return it.numPixels
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
