package extract

import (
	"bytes"
	"encoding/json"
)

// Canonical feature keys produced by a successful extraction, in the order
// Extract emits them. Dominant colors follow as dominant_color_1..N.
const (
	KeyImagePath     = "image_path"
	KeyExtractedText = "extracted_text"
	KeyWidth         = "width"
	KeyHeight        = "height"
	KeyChannels      = "channels"
	KeyFileSizeKB    = "file_size_kb"
	KeyAspectRatio   = "aspect_ratio"
	KeyTotalPixels   = "total_pixels"
	KeyAvgBrightness = "avg_brightness"
	KeyEdgeCount     = "edge_count"
)

// Record is an insertion-ordered mapping of feature name to value. Values are
// string, int, or float64. A record is produced atomically per image and not
// mutated afterwards; two records for different images may carry different
// key sets, which is why the exporter reconciles schemas.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set adds or replaces a feature value. First insertion fixes key order.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key, and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the feature names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON renders the record as a JSON object preserving insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
