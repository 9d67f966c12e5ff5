package domain

import "time"

// RunResult describes one rebuild of the region indicators queue.
type RunResult struct {
	RunID             string       `json:"runId"`
	QueueID           int64        `json:"queueId"`
	DateCreated       time.Time    `json:"dateCreated"`
	Ingested          int          `json:"ingested"`
	FilteredByCPV     int          `json:"filteredByCpv"`
	LookupFailures    int          `json:"lookupFailures"`
	UnresolvedRegions []string     `json:"unresolvedRegions"`
	DroppedNoRegion   int          `json:"droppedNoRegion"`
	Unbanded          int          `json:"unbanded"`
	OnMonitoring      int          `json:"onMonitoring"`
	MonitoringFailed  bool         `json:"monitoringFailed"`
	Published         int          `json:"published"`
	TopRisk           int          `json:"topRisk"`
	Items             []*QueueItem `json:"-"`
}

// CountTopRisk returns the number of items flagged as top risk.
func CountTopRisk(items []*QueueItem) int {
	n := 0
	for _, item := range items {
		if item.TopRisk {
			n++
		}
	}
	return n
}
