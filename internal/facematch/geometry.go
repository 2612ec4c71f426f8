package facematch

import "math"

// ScaleBox multiplies every edge of the box by factor.
// Frames are detected on a downscaled copy; this maps boxes back to the original image.
func ScaleBox(b BoundingBox, factor float64) BoundingBox {
	return BoundingBox{
		Top:    scaleEdge(b.Top, factor),
		Right:  scaleEdge(b.Right, factor),
		Bottom: scaleEdge(b.Bottom, factor),
		Left:   scaleEdge(b.Left, factor),
	}
}

func scaleEdge(v int, factor float64) int {
	return int(math.Round(float64(v) * factor))
}

// BoxFromCorners converts a [x1, y1, x2, y2] pixel box into a BoundingBox.
// Returns false if the slice does not hold exactly four coordinates.
func BoxFromCorners(bbox []float64) (BoundingBox, bool) {
	if len(bbox) != 4 {
		return BoundingBox{}, false
	}
	return BoundingBox{
		Left:   int(math.Round(bbox[0])),
		Top:    int(math.Round(bbox[1])),
		Right:  int(math.Round(bbox[2])),
		Bottom: int(math.Round(bbox[3])),
	}, true
}
