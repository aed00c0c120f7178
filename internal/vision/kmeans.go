package vision

import (
	"fmt"
	"image"
	"math"
	"math/rand"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Stopping criteria for the clustering loop, and the number of random
// restarts from which the lowest-compactness run is kept.
const (
	kmeansMaxIterations = 100
	kmeansEpsilon       = 0.2
	kmeansAttempts      = 10
)

// DominantColors clusters the image's pixel colors into k groups and returns
// the k representative colors. Cluster order is not guaranteed stable across
// invocations on identical input; callers that need determinism must not rely
// on it.
func DominantColors(img image.Image, k int, rng *rand.Rand) ([]RGB, error) {
	if k <= 0 {
		return nil, fmt.Errorf("dominant colors: k must be positive, got %d", k)
	}
	pixels := collectPixels(img)
	if len(pixels) < k {
		return nil, fmt.Errorf("dominant colors: image has %d pixels, need at least %d", len(pixels), k)
	}

	best := make([][3]float64, 0, k)
	bestCompactness := math.Inf(1)
	for attempt := 0; attempt < kmeansAttempts; attempt++ {
		centers, compactness := kmeansRun(pixels, k, rng)
		if compactness < bestCompactness {
			bestCompactness = compactness
			best = centers
		}
	}

	colors := make([]RGB, k)
	for i, c := range best {
		colors[i] = RGB{clamp8(c[0]), clamp8(c[1]), clamp8(c[2])}
	}
	return colors, nil
}

func collectPixels(img image.Image) [][3]float64 {
	b := img.Bounds()
	pixels := make([][3]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pixels = append(pixels, [3]float64{
				float64(r >> 8),
				float64(g >> 8),
				float64(bl >> 8),
			})
		}
	}
	return pixels
}

// kmeansRun performs one clustering attempt from random initial centers and
// returns the final centers with their compactness (sum of squared distances
// of every pixel to its center).
func kmeansRun(pixels [][3]float64, k int, rng *rand.Rand) ([][3]float64, float64) {
	centers := make([][3]float64, k)
	for i := range centers {
		centers[i] = pixels[rng.Intn(len(pixels))]
	}

	assign := make([]int, len(pixels))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		for i, p := range pixels {
			assign[i] = nearestCenter(p, centers)
		}

		sums := make([][4]float64, k)
		for i, p := range pixels {
			c := assign[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			sums[c][2] += p[2]
			sums[c][3]++
		}

		moved := 0.0
		for i := range centers {
			if sums[i][3] == 0 {
				// Empty cluster: reseed from a random pixel.
				centers[i] = pixels[rng.Intn(len(pixels))]
				moved = math.Inf(1)
				continue
			}
			next := [3]float64{
				sums[i][0] / sums[i][3],
				sums[i][1] / sums[i][3],
				sums[i][2] / sums[i][3],
			}
			moved = math.Max(moved, dist(centers[i], next))
			centers[i] = next
		}
		if moved < kmeansEpsilon {
			break
		}
	}

	compactness := 0.0
	for i, p := range pixels {
		compactness += sqDist(p, centers[assign[i]])
	}
	return centers, compactness
}

func nearestCenter(p [3]float64, centers [][3]float64) int {
	bestIdx, bestD := 0, math.Inf(1)
	for i, c := range centers {
		if d := sqDist(p, c); d < bestD {
			bestIdx, bestD = i, d
		}
	}
	return bestIdx
}

func sqDist(a, b [3]float64) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

func dist(a, b [3]float64) float64 {
	return math.Sqrt(sqDist(a, b))
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
