package normalizer

import "github.com/privatinsolvenz/lead-dashboard/internal/domain"

// DefaultStatus is assumed when a payload carries no status at all
const DefaultStatus = "NEUE ANFRAGE"

// inboundPhases maps tracker status labels to lead phases. Labels are
// case-sensitive; the lowercase "neue anfrage" is sent by older automations.
var inboundPhases = map[string]domain.Phase{
	"NEUE ANFRAGE":               domain.PhaseInitialConsultation,
	"neue anfrage":               domain.PhaseInitialConsultation,
	"VERSUCHT ZU ERREICHEN 1":    domain.PhaseInitialConsultation,
	"VERSUCHT ZU ERREICHEN 2":    domain.PhaseInitialConsultation,
	"VERSUCHT ZU ERREICHEN 3":    domain.PhaseInitialConsultation,
	"VERSUCHT ZU ERREICHEN 4":    domain.PhaseInitialConsultation,
	"VERSUCHT ZU ERREICHEN 5":    domain.PhaseInitialConsultation,
	"AUF TERMIN":                 domain.PhaseInitialConsultation,
	"ANFRAGE MELDET SICH SELBST": domain.PhaseInitialConsultation,
	"ANFRAGE NIE ERREICHT":       domain.PhaseInitialConsultation,
	"FALSCHE NUMMER":             domain.PhaseInitialConsultation,
	"UNQUALIFIZIERT - ARCHIV":    domain.PhaseInitialConsultation,
	"ANWALT":                     domain.PhaseChecklist,
	"QUALIFIZIERT":               domain.PhaseChecklist,
	"ANGEBOTSZUSTELLUNG":         domain.PhaseChecklist,
	"ANGEBOT UNTERSCHRIEBEN":     domain.PhaseDocuments,
	"ABGESCHLOSSEN":              domain.PhaseCompleted,
}

var qualifiedStatuses = map[string]bool{
	"QUALIFIZIERT":           true,
	"ANGEBOTSZUSTELLUNG":     true,
	"ANGEBOT UNTERSCHRIEBEN": true,
	"ANWALT":                 true,
	"ABGESCHLOSSEN":          true,
}

// InboundPhaseFor returns the phase for a tracker status. Unmapped statuses
// land in initial consultation.
func InboundPhaseFor(status string) domain.Phase {
	if p, ok := inboundPhases[status]; ok {
		return p
	}
	return domain.PhaseInitialConsultation
}

// IsQualifiedStatus reports whether a tracker status marks the lead as qualified
func IsQualifiedStatus(status string) bool {
	return qualifiedStatuses[status]
}

// InboundStatuses returns every status label the inbound table knows
func InboundStatuses() []string {
	out := make([]string, 0, len(inboundPhases))
	for s := range inboundPhases {
		out = append(out, s)
	}
	return out
}
