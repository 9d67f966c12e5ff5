package domain

import (
	"errors"
	"time"
)

// ErrTenderNotFound is returned by tender lookups when no record matches the outer id.
var ErrTenderNotFound = errors.New("tender not found")

// RiskStage explains why an item was promoted to top risk.
type RiskStage string

const (
	RiskStageNone             RiskStage = ""
	RiskStageMaterialityScore RiskStage = "Materiality score"
	RiskStageProcuringEntity  RiskStage = "Procuring entity"
)

// ScoredTender is a single record of the upstream analytics snapshot.
type ScoredTender struct {
	TenderID          string  `db:"tender_id"`
	TenderOuterID     string  `db:"tender_outer_id"`
	Region            string  `db:"region"`
	ProcuringEntityID string  `db:"procuring_entity_id"`
	TenderScore       float64 `db:"tender_score"`
	MaterialityScore  float64 `db:"materiality_score"`
}

// Tender is the subset of the tender record needed by the queue.
type Tender struct {
	OuterID string `db:"outer_id"`
	CPV     string `db:"cpv"`
}

// Monitoring is an active audit of a tender.
type Monitoring struct {
	ID string `json:"id"`
}

// QueueItem is the unit of ranking and the persisted row of the region queue.
// An empty Region means the raw label could not be canonicalized.
type QueueItem struct {
	TenderID          string    `db:"tender_id" json:"tenderId"`
	TenderOuterID     string    `db:"tender_outer_id" json:"tenderOuterId"`
	ProcuringEntityID string    `db:"procuring_entity_id" json:"procuringEntityId"`
	Region            string    `db:"region" json:"region"`
	TenderScore       float64   `db:"tender_score" json:"tenderScore"`
	MaterialityScore  float64   `db:"materiality_score" json:"materialityScore"`
	CPV               string    `db:"cpv" json:"cpv"`
	TopRisk           bool      `db:"top_risk" json:"topRisk"`
	RiskStage         RiskStage `db:"risk_stage" json:"riskStage,omitempty"`
	Monitoring        bool      `db:"monitoring" json:"monitoring"`
}

// NewQueueItem maps an upstream score record into a fresh queue item.
func NewQueueItem(s ScoredTender) *QueueItem {
	return &QueueItem{
		TenderID:          s.TenderID,
		TenderOuterID:     s.TenderOuterID,
		ProcuringEntityID: s.ProcuringEntityID,
		Region:            s.Region,
		TenderScore:       s.TenderScore,
		MaterialityScore:  s.MaterialityScore,
	}
}

// MarkTopRisk promotes the item with the given reason.
func (q *QueueItem) MarkTopRisk(stage RiskStage) {
	q.TopRisk = true
	q.RiskStage = stage
}

// MarkMonitoring flags an item under active audit and clears any promotion.
func (q *QueueItem) MarkMonitoring() {
	q.TopRisk = false
	q.RiskStage = RiskStageNone
	q.Monitoring = true
}

// HistoryRecord is appended once per published queue.
type HistoryRecord struct {
	ID          int64     `db:"id" json:"id"`
	DateCreated time.Time `db:"date_created" json:"dateCreated"`
}
