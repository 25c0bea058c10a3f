package normalizer

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
)

// Candidate field names, checked in order. The first non-empty value wins.
var (
	idKeys         = []string{"id", "taskId", "task_id", "clickup_id"}
	nameKeys       = []string{"name", "title", "leadName"}
	nameCustom     = []string{"Name", "Mandant"}
	statusNameKeys = []string{"status_name"}
	colorKeys      = []string{"status_color"}
	createdKeys    = []string{"date_created", "createdAt", "created_at"}
	updatedKeys    = []string{"date_updated", "updatedAt", "updated_at"}
	textKeys       = []string{"description", "text_content", "markdown_description", "notes"}
	customKeys     = []string{"custom_fields", "customFields"}
)

// leadField extracts one contact or financial value. Top-level keys are
// checked before custom field names.
type leadField struct {
	field  Field
	keys   []string
	custom []string
	// fallback is used when nothing matched
	fallback string
	set      func(*domain.Lead, string)
}

var leadFields = []leadField{
	{
		field:  FieldStreet,
		keys:   []string{"street", "strasse"},
		custom: []string{"Straße", "Strasse"},
		set:    func(l *domain.Lead, v string) { l.Street = v },
	},
	{
		field:  FieldHouseNumber,
		keys:   []string{"houseNumber", "hausnummer"},
		custom: []string{"Hausnummer"},
		set:    func(l *domain.Lead, v string) { l.HouseNumber = v },
	},
	{
		field:  FieldPostalCode,
		keys:   []string{"postalCode", "plz", "zip"},
		custom: []string{"PLZ", "Postleitzahl"},
		set:    func(l *domain.Lead, v string) { l.PostalCode = v },
	},
	{
		field:  FieldCity,
		keys:   []string{"city", "wohnort", "ort"},
		custom: []string{"Ort", "Wohnort", "Stadt"},
		set:    func(l *domain.Lead, v string) { l.City = v },
	},
	{
		field:  FieldPhone,
		keys:   []string{"phone", "telefon", "telephone"},
		custom: []string{"Telefonnummer", "Telefon", "Phone"},
		set:    func(l *domain.Lead, v string) { l.Phone = v },
	},
	{
		field:    FieldTotalDebt,
		keys:     []string{"totalDebt", "gesamtSchulden"},
		custom:   []string{"Gesamtschulden"},
		fallback: "0",
		set:      func(l *domain.Lead, v string) { l.TotalDebt = v },
	},
	{
		field:    FieldCreditorCount,
		keys:     []string{"creditorCount", "glaeubiger"},
		custom:   []string{"Gläubiger Anzahl", "Anzahl Gläubiger"},
		fallback: "0",
		set:      func(l *domain.Lead, v string) { l.CreditorCount = v },
	},
}

var (
	emailKeys   = []string{"email", "Email", "e_mail"}
	emailCustom = []string{"Email", "E-Mail", "E-Mail-Adresse"}
)

type customField struct {
	name  string
	value any
}

// customFields is a flat, ordered lookup of the task's custom fields
type customFields struct {
	entries []customField
	index   map[string]int
}

func (c *customFields) add(name string, value any) {
	if name == "" || value == nil {
		return
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].value = value
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, customField{name: name, value: value})
}

// get looks up a field by exact name, then case-insensitively
func (c *customFields) get(name string) (any, bool) {
	if i, ok := c.index[name]; ok {
		return c.entries[i].value, true
	}
	for _, e := range c.entries {
		if strings.EqualFold(e.name, name) {
			return e.value, true
		}
	}
	return nil, false
}

// first returns the first non-empty string value among the given names
func (c *customFields) first(names []string) string {
	for _, n := range names {
		if v, ok := c.get(n); ok {
			if s, ok := stringify(v); ok {
				return s
			}
		}
	}
	return ""
}

// collectCustomFields accepts custom fields as a [{name, value}] list or as a
// name→value map and flattens them into one lookup.
func collectCustomFields(task map[string]any) *customFields {
	cf := &customFields{index: make(map[string]int)}
	for _, key := range customKeys {
		switch v := task[key].(type) {
		case []any:
			for _, item := range v {
				field, ok := item.(map[string]any)
				if !ok {
					continue
				}
				name, _ := field["name"].(string)
				cf.add(name, resolveFieldValue(field))
			}
		case map[string]any:
			names := make([]string, 0, len(v))
			for name := range v {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cf.add(name, v[name])
			}
		}
	}
	return cf
}

// resolveFieldValue turns dropdown indexes into option names
func resolveFieldValue(field map[string]any) any {
	value := field["value"]
	if value == nil {
		return nil
	}
	cfg, ok := field["type_config"].(map[string]any)
	if !ok {
		return value
	}
	options, ok := cfg["options"].([]any)
	if !ok {
		return value
	}
	for _, o := range options {
		opt, ok := o.(map[string]any)
		if !ok {
			continue
		}
		if matchesOption(opt, value) {
			if name, ok := stringify(opt["name"]); ok {
				return name
			}
		}
	}
	return value
}

func matchesOption(opt map[string]any, value any) bool {
	want, ok := stringify(value)
	if !ok {
		return false
	}
	if id, ok := stringify(opt["id"]); ok && id == want {
		return true
	}
	if idx, ok := stringify(opt["orderindex"]); ok && idx == want {
		return true
	}
	return false
}

// stringify converts scalar JSON values to trimmed strings. Empty strings,
// objects and arrays report false.
func stringify(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	return s, s != ""
}

// firstString returns the first non-empty scalar among the given keys
func firstString(task map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := stringify(task[k]); ok {
			return s
		}
	}
	return ""
}
