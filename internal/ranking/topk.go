package ranking

import (
	"sort"

	"IndicatorsQueue/internal/domain"
)

// MaxIndex is the last zero-based position that is flagged for a collection of
// n elements and percentage p. Positions 0..MaxIndex inclusive are flagged, so
// a non-zero percentage always flags at least one element.
func MaxIndex(p float64, n int) int {
	size := n
	if size == 0 {
		size = 1
	}
	return int(p * float64(size) / 100)
}

// MarkByMateriality flags the top share of a bucket already sorted by
// materiality score descending. A zero percentage disables the stage.
// It returns the number of flagged items.
func MarkByMateriality(bucket []*domain.QueueItem, p float64) int {
	if p <= 0 {
		return 0
	}

	maxIndex := MaxIndex(p, len(bucket))
	flagged := 0
	for i, item := range bucket {
		if i <= maxIndex {
			item.MarkTopRisk(domain.RiskStageMaterialityScore)
			flagged++
			continue
		}
		item.TopRisk = false
		item.RiskStage = domain.RiskStageNone
	}
	return flagged
}

type entityGroup struct {
	id    string
	total float64
	items []*domain.QueueItem
}

// PromoteByProcuringEntity groups the items that are not yet top risk by
// procuring entity and promotes every item of the leading groups. Groups are
// ordered by total materiality score descending, then entity id ascending.
// It returns the number of promoted items.
func PromoteByProcuringEntity(bucket []*domain.QueueItem, p float64) int {
	if p <= 0 {
		return 0
	}

	groups := groupByEntity(bucket)
	if len(groups) == 0 {
		return 0
	}

	maxIndex := MaxIndex(p, len(groups))
	promoted := 0
	for i, g := range groups {
		if i > maxIndex {
			break
		}
		for _, item := range g.items {
			item.MarkTopRisk(domain.RiskStageProcuringEntity)
			promoted++
		}
	}
	return promoted
}

func groupByEntity(bucket []*domain.QueueItem) []*entityGroup {
	index := map[string]*entityGroup{}
	var groups []*entityGroup
	for _, item := range bucket {
		if item.TopRisk {
			continue
		}
		g, ok := index[item.ProcuringEntityID]
		if !ok {
			g = &entityGroup{id: item.ProcuringEntityID}
			index[item.ProcuringEntityID] = g
			groups = append(groups, g)
		}
		g.total += item.MaterialityScore
		g.items = append(g.items, item)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].total != groups[j].total {
			return groups[i].total > groups[j].total
		}
		return groups[i].id < groups[j].id
	})
	return groups
}
