package pkg

import "math"

const (
	INF_WEIGHT float64 = math.MaxFloat64

	// unlimited search iterations (max_iterations == 0)
	MAX_ITERATIONS = math.MaxInt
)

// costmap cell values
const (
	FREE_SPACE                  uint8 = 0
	INSCRIBED_INFLATED_OBSTACLE uint8 = 253
	LETHAL_OBSTACLE             uint8 = 254
	NO_INFORMATION              uint8 = 255

	DEFAULT_MAX_COST float64 = 253.0
)

const (
	DEFAULT_COSTMAP_TOPIC       = "global_costmap/costmap_raw"
	DEFAULT_LOCAL_COSTMAP_TOPIC = "local_costmap/costmap_raw"
)
