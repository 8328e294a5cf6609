package model

import "fmt"

// Reason classifies the outcome of processing one run/host pair.
type Reason int

const (
	ReasonPlaced Reason = iota
	ReasonNoIntersection
	ReasonNoUsableGeometry
	ReasonUnsupportedHostKind
	ReasonDuplicatePoint
	ReasonContainedInExisting
	ReasonDegenerateOrigin
	ReasonMissingDepthParameter
	ReasonImplausibleDimension
	ReasonSinkFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonPlaced:
		return "Placed"
	case ReasonNoIntersection:
		return "NoIntersection"
	case ReasonNoUsableGeometry:
		return "NoUsableGeometry"
	case ReasonUnsupportedHostKind:
		return "UnsupportedHostKind"
	case ReasonDuplicatePoint:
		return "DuplicatePoint"
	case ReasonContainedInExisting:
		return "ContainedInExisting"
	case ReasonDegenerateOrigin:
		return "DegenerateOrigin"
	case ReasonMissingDepthParameter:
		return "MissingRequiredDepthParameter"
	case ReasonImplausibleDimension:
		return "ImplausibleDimension"
	case ReasonSinkFailure:
		return "PlacementSinkFailure"
	default:
		return "Unknown"
	}
}

// IsSkip reports whether the reason is a normal no-op (not counted as
// suppressed or failed in the summary).
func (r Reason) IsSkip() bool {
	switch r {
	case ReasonNoIntersection, ReasonNoUsableGeometry, ReasonUnsupportedHostKind:
		return true
	}
	return false
}

// IsSuppressed reports whether the candidate was valid but redundant.
func (r Reason) IsSuppressed() bool {
	return r == ReasonDuplicatePoint || r == ReasonContainedInExisting
}

// IsFailure reports whether the candidate could not be processed.
func (r Reason) IsFailure() bool {
	switch r {
	case ReasonDegenerateOrigin, ReasonMissingDepthParameter,
		ReasonImplausibleDimension, ReasonSinkFailure:
		return true
	}
	return false
}

// Outcome records what happened to one run/host pair during an invocation.
type Outcome struct {
	RunID     string              `json:"run_id"`
	HostID    string              `json:"host_id"`
	Reason    Reason              `json:"reason"`
	Detail    string              `json:"detail,omitempty"`
	Candidate *PlacementCandidate `json:"candidate,omitempty"`
}

// Summary aggregates every outcome of one invocation. Processing is
// isolated per candidate, so the summary always covers all pairs even when
// some of them failed.
type Summary struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Add appends an outcome.
func (s *Summary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// Placed returns the number of openings committed.
func (s Summary) Placed() int { return s.countIf(func(r Reason) bool { return r == ReasonPlaced }) }

// Suppressed returns the number of candidates rejected as redundant.
func (s Summary) Suppressed() int { return s.countIf(Reason.IsSuppressed) }

// Failed returns the number of candidates that could not be processed.
func (s Summary) Failed() int { return s.countIf(Reason.IsFailure) }

// Skipped returns the number of pairs with no work to do.
func (s Summary) Skipped() int { return s.countIf(Reason.IsSkip) }

func (s Summary) countIf(pred func(Reason) bool) int {
	n := 0
	for _, o := range s.Outcomes {
		if pred(o.Reason) {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes, for reporting with reasons.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Reason.IsFailure() {
			out = append(out, o)
		}
	}
	return out
}

func (s Summary) String() string {
	return fmt.Sprintf("%d placed, %d suppressed, %d failed, %d skipped",
		s.Placed(), s.Suppressed(), s.Failed(), s.Skipped())
}
