package usecase

import (
	"sort"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

// normalizeRegions rewrites every item's region to its canonical name.
// Unknown labels leave the item with an empty region and are returned
// deduplicated and sorted for operator review.
func normalizeRegions(items []*domain.QueueItem, dict ports.RegionDictionary) []string {
	seen := map[string]struct{}{}
	var unresolved []string
	for _, item := range items {
		raw := item.Region
		canonical, ok := dict.Canonicalize(raw)
		if !ok {
			if _, dup := seen[raw]; !dup {
				seen[raw] = struct{}{}
				unresolved = append(unresolved, raw)
			}
			canonical = ""
		}
		item.Region = canonical
	}
	sort.Strings(unresolved)
	return unresolved
}

// dropUnresolved removes items without a canonical region.
func dropUnresolved(items []*domain.QueueItem) ([]*domain.QueueItem, int) {
	kept := items[:0:0]
	for _, item := range items {
		if item.Region != "" {
			kept = append(kept, item)
		}
	}
	return kept, len(items) - len(kept)
}

// groupByRegion partitions items by region. Every entry is non-empty.
func groupByRegion(items []*domain.QueueItem) map[string][]*domain.QueueItem {
	groups := make(map[string][]*domain.QueueItem)
	for _, item := range items {
		groups[item.Region] = append(groups[item.Region], item)
	}
	return groups
}

func sortedRegions(groups map[string][]*domain.QueueItem) []string {
	regions := make([]string, 0, len(groups))
	for region := range groups {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
