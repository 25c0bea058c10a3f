// Package normalizer maps inbound tracker payloads of unpredictable shape to
// the canonical lead record. It performs no I/O; time and random ids are
// injected so results are reproducible.
package normalizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
)

// PlaceholderName is used when a payload carries no usable name
const PlaceholderName = "Unbekannter Mandant"

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Field names an optional lead value that a payload may or may not carry
type Field string

const (
	FieldStreet        Field = "street"
	FieldHouseNumber   Field = "houseNumber"
	FieldPostalCode    Field = "postalCode"
	FieldCity          Field = "city"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldTotalDebt     Field = "totalDebt"
	FieldCreditorCount Field = "creditorCount"
)

// Result is a normalized lead together with the optional fields that were
// actually present in the payload. Fields not found hold their defaults.
type Result struct {
	Lead  domain.Lead
	Found map[Field]bool
}

// Has reports whether the payload carried f
func (r Result) Has(f Field) bool {
	return r.Found[f]
}

// Normalizer converts inbound payloads to leads
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithClock sets the source of the current time
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithIDSource sets the source of the random part of synthesized task ids
func WithIDSource(newID func() string) Option {
	return func(n *Normalizer) { n.newID = newID }
}

// New creates a Normalizer using wall-clock UTC time and random ids unless overridden
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now: func() time.Time { return time.Now().UTC() },
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps a single payload to a lead. Wrapped tasks are unwrapped; for
// an array the first element is used. It never fails: unexpected errors yield
// a minimal lead with status ERROR.
func (n *Normalizer) Normalize(raw any) domain.Lead {
	return n.Extract(raw).Lead
}

// Extract is Normalize with field presence reported
func (n *Normalizer) Extract(raw any) Result {
	p := Detect(raw)
	switch p.Shape {
	case ShapeArray:
		if len(p.Items) == 0 {
			return Result{Lead: n.errorLead(), Found: map[Field]bool{}}
		}
		return n.ExtractTask(p.Items[0].Task)
	default:
		return n.ExtractTask(p.Task)
	}
}

// NormalizeAll maps every task in the payload to a lead, skipping array
// elements that are not task objects.
func (n *Normalizer) NormalizeAll(raw any) []domain.Lead {
	p := Detect(raw)
	if p.Shape != ShapeArray {
		return []domain.Lead{n.NormalizeTask(p.Task)}
	}
	leads := make([]domain.Lead, 0, len(p.Items))
	for _, item := range p.Items {
		if !item.IsTask() {
			continue
		}
		leads = append(leads, n.NormalizeTask(item.Task))
	}
	return leads
}

// NormalizeTask maps one task object to a lead. A nil task is treated as empty.
func (n *Normalizer) NormalizeTask(task map[string]any) domain.Lead {
	return n.ExtractTask(task).Lead
}

// ExtractTask is NormalizeTask with field presence reported
func (n *Normalizer) ExtractTask(task map[string]any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Lead: n.errorLead(), Found: map[Field]bool{}}
		}
	}()

	if task == nil {
		task = map[string]any{}
	}
	now := n.now()
	custom := collectCustomFields(task)

	taskID := firstString(task, idKeys)
	if taskID == "" {
		taskID = n.fallbackID(now)
	}

	name := firstString(task, nameKeys)
	if name == "" {
		name = custom.first(nameCustom)
	}
	if name == "" {
		name = fmt.Sprintf("%s (%s)", PlaceholderName, taskID)
	}

	status := extractStatus(task, custom)

	found := map[Field]bool{}
	email := extractEmail(task, custom)
	found[FieldEmail] = email != ""

	lead := domain.Lead{
		TaskID:    taskID,
		LeadName:  name,
		Phase:     InboundPhaseFor(status),
		Qualified: IsQualifiedStatus(status),
		ExternalStatus: domain.ExternalStatus{
			Status:   status,
			Color:    extractColor(task),
			Priority: extractPriority(task),
		},
		Email:     email,
		Documents: []domain.Document{},
		CreatedAt: parseTimestamp(task, createdKeys, now),
		UpdatedAt: parseTimestamp(task, updatedKeys, now),
	}

	for _, f := range leadFields {
		v := firstString(task, f.keys)
		if v == "" {
			v = custom.first(f.custom)
		}
		if v == "" {
			v = f.fallback
		} else {
			found[f.field] = true
		}
		f.set(&lead, v)
	}

	return Result{Lead: lead, Found: found}
}

// extractStatus checks, in order: a string status, a nested {status: {status}},
// status_name, then any custom field whose name contains "status".
func extractStatus(task map[string]any, custom *customFields) string {
	switch s := task["status"].(type) {
	case string:
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	case map[string]any:
		if v, ok := stringify(s["status"]); ok {
			return v
		}
	}
	if v := firstString(task, statusNameKeys); v != "" {
		return v
	}
	for _, e := range custom.entries {
		if strings.Contains(strings.ToLower(e.name), "status") {
			if v, ok := stringify(e.value); ok {
				return v
			}
		}
	}
	return DefaultStatus
}

func extractColor(task map[string]any) string {
	if s, ok := task["status"].(map[string]any); ok {
		if v, ok := stringify(s["color"]); ok {
			return v
		}
	}
	if v := firstString(task, colorKeys); v != "" {
		return v
	}
	return domain.DefaultExternalColor
}

func extractPriority(task map[string]any) string {
	switch p := task["priority"].(type) {
	case map[string]any:
		if v, ok := stringify(p["priority"]); ok {
			return v
		}
	default:
		if v, ok := stringify(p); ok {
			return v
		}
	}
	return domain.DefaultExternalPriority
}

// extractEmail prefers known fields and falls back to scanning free text
func extractEmail(task map[string]any, custom *customFields) string {
	if v := firstString(task, emailKeys); v != "" {
		return v
	}
	if v := custom.first(emailCustom); v != "" {
		return v
	}
	var text strings.Builder
	for _, k := range textKeys {
		if s, ok := task[k].(string); ok {
			text.WriteString(s)
			text.WriteByte(' ')
		}
	}
	return emailPattern.FindString(text.String())
}

// parseTimestamp accepts epoch milliseconds as numbers or numeric strings, and
// RFC 3339 strings. Anything else falls back to now.
func parseTimestamp(task map[string]any, keys []string, now time.Time) time.Time {
	for _, k := range keys {
		v, ok := task[k]
		if !ok || v == nil {
			continue
		}
		if t, ok := toTime(v); ok {
			return t
		}
		return now
	}
	return now
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return time.Time{}, false
			}
			ms = int64(f)
		}
		return fromMillis(ms)
	case float64:
		return fromMillis(int64(t))
	case int64:
		return fromMillis(t)
	case int:
		return fromMillis(int64(t))
	case string:
		s := strings.TrimSpace(t)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromMillis(ms)
		}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromMillis(ms int64) (time.Time, bool) {
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func (n *Normalizer) fallbackID(now time.Time) string {
	return fmt.Sprintf("fallback-%d-%s", now.UnixMilli(), n.newID())
}

// errorLead is the minimal valid lead returned when normalization blew up
func (n *Normalizer) errorLead() domain.Lead {
	now := n.now()
	id := n.fallbackID(now)
	return domain.Lead{
		TaskID:   id,
		LeadName: fmt.Sprintf("%s (%s)", PlaceholderName, id),
		Phase:    domain.PhaseInitialConsultation,
		ExternalStatus: domain.ExternalStatus{
			Status:   domain.ErrorExternalStatus,
			Color:    domain.DefaultExternalColor,
			Priority: domain.DefaultExternalPriority,
		},
		TotalDebt:     "0",
		CreditorCount: "0",
		Documents:     []domain.Document{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
