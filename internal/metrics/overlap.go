package metrics

import "github.com/san-kum/fzx/internal/fzx"

// OverlappingPairs counts the pairs of bodies whose world bounding boxes
// intersect.
func OverlappingPairs(bodies []*fzx.Body) int {
	n := 0
	for i := 0; i < len(bodies); i++ {
		bi := bodies[i].BoundingBox()
		for j := i + 1; j < len(bodies); j++ {
			if bi.Collides(bodies[j].BoundingBox()) {
				n++
			}
		}
	}
	return n
}

// Overlap reports the fraction of frames in which at least one pair of
// bounding boxes intersected.
type Overlap struct {
	name     string
	overlaps int
	samples  int
}

func NewOverlap() *Overlap {
	return &Overlap{name: "overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(bodies []*fzx.Body, t float64) {
	o.samples++
	if OverlappingPairs(bodies) > 0 {
		o.overlaps++
	}
}

func (o *Overlap) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.overlaps) / float64(o.samples)
}

func (o *Overlap) Reset() {
	o.overlaps = 0
	o.samples = 0
}
