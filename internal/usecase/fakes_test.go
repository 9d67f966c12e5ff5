package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
)

type fakeSettings struct {
	q   config.QueueConfig
	err error
}

func (f *fakeSettings) Init() error                  { return f.err }
func (f *fakeSettings) Settings() config.QueueConfig { return f.q }

type fakeScores struct {
	scores []domain.ScoredTender
	err    error
}

func (f *fakeScores) FetchScores(context.Context) ([]domain.ScoredTender, error) {
	return f.scores, f.err
}

type fakeTenders struct {
	cpv   map[string]string
	fail  map[string]bool
	calls atomic.Int32
}

func (f *fakeTenders) FindByOuterID(_ context.Context, outerID string) (domain.Tender, error) {
	f.calls.Add(1)
	if f.fail[outerID] {
		return domain.Tender{}, errors.New("connection reset")
	}
	cpv, ok := f.cpv[outerID]
	if !ok {
		return domain.Tender{}, domain.ErrTenderNotFound
	}
	return domain.Tender{OuterID: outerID, CPV: cpv}, nil
}

type fakeDictionary map[string]string

func (d fakeDictionary) Canonicalize(raw string) (string, bool) {
	name, ok := d[raw]
	return name, ok
}

type fakeAudit struct {
	ids []string
	err error
}

func (f *fakeAudit) ActiveMonitorings(context.Context) ([]domain.Monitoring, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Monitoring, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, domain.Monitoring{ID: id})
	}
	return out, nil
}

type memQueue struct {
	mu      sync.Mutex
	items   []*domain.QueueItem
	deletes int
	saveErr error
}

func (q *memQueue) DeleteAll(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.deletes++
	return nil
}

func (q *memQueue) SaveAll(_ context.Context, items []*domain.QueueItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.saveErr != nil {
		return q.saveErr
	}
	q.items = append(q.items, items...)
	return nil
}

type memHistory struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
}

func (h *memHistory) MaxID(context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var maxID int64
	for _, r := range h.records {
		maxID = max(maxID, r.ID)
	}
	return maxID, nil
}

func (h *memHistory) Save(_ context.Context, r domain.HistoryRecord) (domain.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return r, nil
}

type recordingNotifier struct {
	results []domain.RunResult
	err     error
}

func (n *recordingNotifier) PublishRunSummary(_ context.Context, r domain.RunResult) error {
	n.results = append(n.results, r)
	return n.err
}

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.FixedZone("EET", 2*60*60))

type harness struct {
	settings *fakeSettings
	scores   *fakeScores
	tenders  *fakeTenders
	regions  fakeDictionary
	audit    *fakeAudit
	queue    *memQueue
	history  *memHistory
	notifier *recordingNotifier
}

func newHarness(q config.QueueConfig, scores ...domain.ScoredTender) *harness {
	cpv := map[string]string{}
	for _, s := range scores {
		cpv[s.TenderOuterID] = "45000000"
	}
	return &harness{
		settings: &fakeSettings{q: q},
		scores:   &fakeScores{scores: scores},
		tenders:  &fakeTenders{cpv: cpv},
		regions:  fakeDictionary{"r": "R", "R": "R", "s": "S"},
		audit:    &fakeAudit{},
		queue:    &memQueue{},
		history:  &memHistory{},
		notifier: &recordingNotifier{},
	}
}

func (h *harness) updater() *Updater {
	return NewUpdater(UpdaterDeps{
		Settings: h.settings,
		Scores:   h.scores,
		Tenders:  h.tenders,
		Regions:  h.regions,
		Audit:    h.audit,
		Queue:    h.queue,
		History:  h.history,
		Notifier: h.notifier,
		Clock:    func() time.Time { return fixedNow },
	})
}

func scored(outerID, region, entity string, tenderScore, materiality float64) domain.ScoredTender {
	return domain.ScoredTender{
		TenderID:          "id-" + outerID,
		TenderOuterID:     outerID,
		Region:            region,
		ProcuringEntityID: entity,
		TenderScore:       tenderScore,
		MaterialityScore:  materiality,
	}
}

func baseConfig() config.QueueConfig {
	q := config.DefaultQueueConfig()
	q.LowImpactRange = domain.ImpactRange{Min: 0, Max: 30}
	q.MediumImpactRange = domain.ImpactRange{Min: 30, Max: 70}
	q.HighImpactRange = domain.ImpactRange{Min: 70}
	q.LowTopRiskPercentage = 0
	q.MediumTopRiskPercentage = 0
	q.HighTopRiskPercentage = 0
	q.LowTopRiskProcuringEntityPercentage = 0
	q.MediumTopRiskProcuringEntityPercentage = 0
	q.HighTopRiskProcuringEntityPercentage = 0
	q.ForbiddenCPVPrefix = "6611"
	return q
}

func lowOnlyConfig() config.QueueConfig {
	q := baseConfig()
	q.LowImpactRange = domain.ImpactRange{Min: 0, Max: 100}
	q.MediumImpactRange = domain.ImpactRange{Min: 100, Max: 200}
	q.HighImpactRange = domain.ImpactRange{Min: 200}
	return q
}
