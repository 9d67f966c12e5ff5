// Package ranking splits queue items into impact bands and marks the top-risk
// share of every band. It performs no I/O and is safe to call per region.
package ranking

import (
	"sort"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
)

// Result is the categorization of one region.
type Result struct {
	Buckets  map[domain.Bucket][]*domain.QueueItem
	Unbanded []*domain.QueueItem
}

// Items flattens the buckets in low, medium, high order.
func (r Result) Items() []*domain.QueueItem {
	var out []*domain.QueueItem
	for _, b := range domain.Buckets {
		out = append(out, r.Buckets[b]...)
	}
	return out
}

// BucketOf places a tender score in its impact band. The high band has no upper bound.
func BucketOf(score float64, q config.QueueConfig) (domain.Bucket, bool) {
	switch {
	case q.LowImpactRange.Contains(score):
		return domain.BucketLow, true
	case q.MediumImpactRange.Contains(score):
		return domain.BucketMedium, true
	case q.HighImpactRange.ContainsUnbounded(score):
		return domain.BucketHigh, true
	}
	return "", false
}

// Split assigns every item to a band and orders each band by materiality
// score, highest first. Items outside all bands are returned separately.
func Split(items []*domain.QueueItem, q config.QueueConfig) Result {
	res := Result{Buckets: make(map[domain.Bucket][]*domain.QueueItem, len(domain.Buckets))}
	for _, item := range items {
		b, ok := BucketOf(item.TenderScore, q)
		if !ok {
			res.Unbanded = append(res.Unbanded, item)
			continue
		}
		res.Buckets[b] = append(res.Buckets[b], item)
	}

	for _, b := range domain.Buckets {
		bucket := res.Buckets[b]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].MaterialityScore > bucket[j].MaterialityScore
		})
	}
	return res
}

// Categorize splits one region into bands, marks the top share of each band by
// materiality score and then promotes the leading procuring entities among the rest.
func Categorize(items []*domain.QueueItem, q config.QueueConfig) Result {
	res := Split(items, q)
	for _, b := range domain.Buckets {
		MarkByMateriality(res.Buckets[b], q.TopRiskPercentage(b))
	}
	for _, b := range domain.Buckets {
		PromoteByProcuringEntity(res.Buckets[b], q.EntityPercentage(b))
	}
	return res
}
