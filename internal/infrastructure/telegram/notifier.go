package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

const (
	defaultAPIBase   = "https://api.telegram.org"
	maxListedRegions = 20
)

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another Bot API host.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.apiBase = strings.TrimRight(base, "/")
	return n
}

// PublishRunSummary posts a Markdown summary of a rebuild.
func (n *Notifier) PublishRunSummary(ctx context.Context, result domain.RunResult) error {
	return n.send(ctx, FormatSummary(result))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatSummary renders the message body for a run.
func FormatSummary(r domain.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Region indicators queue #%d*\n", r.QueueID)
	fmt.Fprintf(&b, "Created: %s\n", r.DateCreated.UTC().Format(time.RFC3339))
	if r.MonitoringFailed {
		b.WriteString("⚠️ Audit service unavailable, empty queue published\n")
	}
	fmt.Fprintf(&b, "Ingested: %d\n", r.Ingested)
	fmt.Fprintf(&b, "Filtered by CPV: %d\n", r.FilteredByCPV)
	if r.LookupFailures > 0 {
		fmt.Fprintf(&b, "Tender lookup failures: %d\n", r.LookupFailures)
	}
	if r.Unbanded > 0 {
		fmt.Fprintf(&b, "Outside impact bands: %d\n", r.Unbanded)
	}
	fmt.Fprintf(&b, "On monitoring: %d\n", r.OnMonitoring)
	fmt.Fprintf(&b, "Published: %d (top risk: %d)\n", r.Published, r.TopRisk)

	if len(r.UnresolvedRegions) > 0 {
		fmt.Fprintf(&b, "\nUnresolved regions (%d, dropped items: %d):\n", len(r.UnresolvedRegions), r.DroppedNoRegion)
		for i, name := range r.UnresolvedRegions {
			if i == maxListedRegions {
				fmt.Fprintf(&b, "… and %d more\n", len(r.UnresolvedRegions)-maxListedRegions)
				break
			}
			fmt.Fprintf(&b, "- `%s`\n", escapeCode(name))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func escapeCode(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
