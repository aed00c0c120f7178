package vision

import (
	"image"
	"math/rand"
	"sync"
	"time"
)

// Engine bundles the pure-Go image primitives behind one value so callers can
// inject fakes for the whole set.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine with time-seeded cluster initialization.
func NewEngine() *Engine {
	return NewEngineWithSeed(time.Now().UnixNano())
}

// NewEngineWithSeed returns an engine with deterministic cluster
// initialization. Cluster order is still an implementation detail.
func NewEngineWithSeed(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Load decodes raw image bytes into a pixel grid.
func (e *Engine) Load(data []byte) (image.Image, error) {
	img, _, err := Decode(data)
	return img, err
}

// Properties computes the geometric features of a decoded image.
func (e *Engine) Properties(img image.Image, fileSize int64) (Properties, error) {
	return Props(img, fileSize)
}

// Brightness returns the mean luminance, rounded to 2 decimals.
func (e *Engine) Brightness(img image.Image) float64 {
	return Brightness(img)
}

// EdgeCount returns the number of Canny edge pixels.
func (e *Engine) EdgeCount(img image.Image) int {
	return EdgeCount(img)
}

// DominantColors clusters pixel colors into k representative colors.
func (e *Engine) DominantColors(img image.Image, k int) ([]RGB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return DominantColors(img, k, e.rng)
}
