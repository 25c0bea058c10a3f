package domain

import "fmt"

// Phase is the workflow stage a lead is in
type Phase string

const (
	PhaseInitialConsultation Phase = "initial-consultation"
	PhaseChecklist           Phase = "checklist"
	PhaseDocuments           Phase = "documents"
	PhaseCompleted           Phase = "completed"
)

// Phases lists all phases in workflow order
var Phases = []Phase{
	PhaseInitialConsultation,
	PhaseChecklist,
	PhaseDocuments,
	PhaseCompleted,
}

// IsValid checks if the phase is one of the defined values
func (p Phase) IsValid() bool {
	switch p {
	case PhaseInitialConsultation, PhaseChecklist, PhaseDocuments, PhaseCompleted:
		return true
	}
	return false
}

// ParsePhase converts a string to a Phase, rejecting unknown values
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid phase %q", s)
	}
	return p, nil
}

// TransitionInput describes the state a lead is in when automatic transitions
// are evaluated, after the caller's changes have been applied.
type TransitionInput struct {
	Phase     Phase
	Qualified bool
	// Explicit is set when the caller supplied a phase. Explicit phases are never overridden.
	Explicit bool
}

// PhaseTransition moves a lead from one phase to another when Guard holds
type PhaseTransition struct {
	Name  string
	From  Phase
	To    Phase
	Guard func(TransitionInput) bool
}

// PhaseMachine evaluates automatic phase transitions. Manual phase changes are
// not constrained by it; it only decides where a lead moves on its own.
type PhaseMachine struct {
	transitions []PhaseTransition
}

// QualifiedAdvance moves a qualified lead out of initial consultation
var QualifiedAdvance = PhaseTransition{
	Name: "qualified-advance",
	From: PhaseInitialConsultation,
	To:   PhaseChecklist,
	Guard: func(in TransitionInput) bool {
		return in.Qualified && !in.Explicit
	},
}

// NewPhaseMachine creates a machine with the given transitions. Without
// arguments it uses the default lead workflow.
func NewPhaseMachine(transitions ...PhaseTransition) *PhaseMachine {
	if len(transitions) == 0 {
		transitions = []PhaseTransition{QualifiedAdvance}
	}
	return &PhaseMachine{transitions: transitions}
}

// Next returns the phase the lead ends up in. The first matching transition
// wins and at most one transition is applied per call.
func (m *PhaseMachine) Next(in TransitionInput) Phase {
	if in.Explicit {
		return in.Phase
	}
	for _, t := range m.transitions {
		if t.From == in.Phase && t.Guard(in) {
			return t.To
		}
	}
	return in.Phase
}

// Transitions returns the configured transitions
func (m *PhaseMachine) Transitions() []PhaseTransition {
	out := make([]PhaseTransition, len(m.transitions))
	copy(out, m.transitions)
	return out
}
