package clickup

import "github.com/privatinsolvenz/lead-dashboard/internal/domain"

// Tracker status labels written by the outbound sync
const (
	StatusNewRequest  = "NEUE ANFRAGE"
	StatusAppointment = "AUF TERMIN"
	StatusQualified   = "QUALIFIZIERT"
	StatusLawyer      = "ANWALT"
	StatusOfferSigned = "ANGEBOT UNTERSCHRIEBEN"
	StatusCompleted   = "ABGESCHLOSSEN"
)

// The outbound tables are not the inverse of the normalizer's inbound table.
// AUF TERMIN, for example, reads back as initial consultation.
var (
	outboundQualified = map[domain.Phase]string{
		domain.PhaseInitialConsultation: StatusQualified,
		domain.PhaseChecklist:           StatusLawyer,
		domain.PhaseDocuments:           StatusOfferSigned,
		domain.PhaseCompleted:           StatusCompleted,
	}
	outboundUnqualified = map[domain.Phase]string{
		domain.PhaseInitialConsultation: StatusNewRequest,
		domain.PhaseChecklist:           StatusAppointment,
	}
)

// OutboundStatusFor returns the tracker status to write for a lead's phase
// and qualification
func OutboundStatusFor(phase domain.Phase, qualified bool) string {
	if qualified {
		if s, ok := outboundQualified[phase]; ok {
			return s
		}
		return StatusQualified
	}
	if s, ok := outboundUnqualified[phase]; ok {
		return s
	}
	return StatusNewRequest
}
