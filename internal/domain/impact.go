package domain

import "fmt"

// Bucket names an impact band.
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

// Buckets lists the bands in ascending order of impact.
var Buckets = []Bucket{BucketLow, BucketMedium, BucketHigh}

// ImpactRange is the half-open interval [Min, Max) of tender scores.
type ImpactRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether score falls in [Min, Max).
func (r ImpactRange) Contains(score float64) bool {
	return score >= r.Min && score < r.Max
}

// ContainsUnbounded ignores the upper bound; the high band uses it.
func (r ImpactRange) ContainsUnbounded(score float64) bool {
	return score >= r.Min
}

func (r ImpactRange) String() string {
	return fmt.Sprintf("[%g, %g)", r.Min, r.Max)
}
