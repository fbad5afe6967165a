// Package interview implements the dialogue state machine for a structured
// voice interview: staged question flow, per-answer scoring, and the final
// weighted score breakdown.
package interview

// Stage is one phase of the interview. Stages are ordered and only ever
// advance; all transitions happen inside Agent.Advance.
type Stage int

const (
	StageIntroduction Stage = iota
	StageTechnical
	StageBehavioral
	StageConclusion
)

func (s Stage) String() string {
	switch s {
	case StageIntroduction:
		return "introduction"
	case StageTechnical:
		return "technical"
	case StageBehavioral:
		return "behavioral"
	case StageConclusion:
		return "conclusion"
	default:
		return "unknown"
	}
}

// Terminal reports whether the interview is over.
func (s Stage) Terminal() bool {
	return s == StageConclusion
}
