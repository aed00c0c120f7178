package vision

import (
	"image"
	"math"
)

// Gradient thresholds on the 0-255 magnitude scale.
const (
	cannyLowThreshold  = 100
	cannyHighThreshold = 200
)

// EdgeCount runs Canny edge detection over img and returns the number of
// pixels classified as edges.
func EdgeCount(img image.Image) int {
	mask := EdgeMask(Grayscale(img), cannyLowThreshold, cannyHighThreshold)
	n := 0
	for _, on := range mask {
		if on {
			n++
		}
	}
	return n
}

// EdgeMask computes a Canny edge mask for a grayscale image: Sobel gradients,
// non-maximum suppression along the quantized gradient direction, then
// double-threshold hysteresis. The mask is row-major, one bool per pixel.
func EdgeMask(gray *image.Gray, low, high int) []bool {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	if w < 3 || h < 3 {
		return mask
	}

	mag := make([]float64, w*h)
	dir := make([]uint8, w*h) // 0=E/W 1=NE/SW 2=N/S 3=NW/SE

	at := func(x, y int) int { return int(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			i := y*w + x
			// L1 magnitude, matching the usual fast-gradient convention;
			// Sobel output scaled back to 0-255.
			mag[i] = (math.Abs(float64(gx)) + math.Abs(float64(gy))) / 4
			dir[i] = quantizeDirection(float64(gx), float64(gy))
		}
	}

	// Non-maximum suppression + double threshold.
	const (
		none   = 0
		weak   = 1
		strong = 2
	)
	class := make([]uint8, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m < float64(low) {
				continue
			}
			dx, dy := directionOffsets(dir[i])
			if m < mag[(y+dy)*w+(x+dx)] || m < mag[(y-dy)*w+(x-dx)] {
				continue
			}
			if m >= float64(high) {
				class[i] = strong
			} else {
				class[i] = weak
			}
		}
	}

	// Hysteresis: weak edges survive only when 8-connected to a strong one.
	queue := make([]int, 0, w)
	for i, c := range class {
		if c == strong {
			mask[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == weak && !mask[j] {
					mask[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return mask
}

func quantizeDirection(gx, gy float64) uint8 {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 0
	case angle < 67.5:
		return 1
	case angle < 112.5:
		return 2
	default:
		return 3
	}
}

func directionOffsets(d uint8) (dx, dy int) {
	switch d {
	case 0:
		return 1, 0
	case 1:
		return 1, 1
	case 2:
		return 0, 1
	default:
		return 1, -1
	}
}
