package domain

import "strings"

// RoutingLabel is the closed set of classification outcomes. Anything
// the classifier emits outside this set resolves to LabelGeneral.
type RoutingLabel string

const (
	LabelImplementation        RoutingLabel = "implementation"
	LabelMotionPlanning        RoutingLabel = "motion_planning"
	LabelTaskAndMotionPlanning RoutingLabel = "task_and_motion_planning"
	LabelGeneral               RoutingLabel = "general"
)

// ParseRoutingLabel normalises a raw label string. Unknown or empty
// labels parse to LabelGeneral; an unknown label must never select a
// profile of its own.
func ParseRoutingLabel(s string) RoutingLabel {
	switch RoutingLabel(strings.ToLower(strings.TrimSpace(s))) {
	case LabelImplementation:
		return LabelImplementation
	case LabelMotionPlanning:
		return LabelMotionPlanning
	case LabelTaskAndMotionPlanning:
		return LabelTaskAndMotionPlanning
	default:
		return LabelGeneral
	}
}

// RoutingProfile binds a label to the collection, filter and answer
// instructions used to serve questions carrying that label. Profiles
// are constructed once at startup and never mutated.
type RoutingProfile struct {
	Label        RoutingLabel
	Collection   string
	Filter       *Filter
	Instructions string

	// Description is the representative content descriptor included
	// in the classification prompt for this profile's collection.
	Description string
}

// GeneralTarget selects how LabelGeneral questions are served.
type GeneralTarget string

const (
	// GeneralToImplementation reuses the implementation profile.
	GeneralToImplementation GeneralTarget = "implementation"

	// GeneralToSurvey queries the survey collection with no topic
	// filter.
	GeneralToSurvey GeneralTarget = "survey"

	// GeneralSkip short-circuits: no retrieval, no answer.
	GeneralSkip GeneralTarget = "skip"
)

// ParseGeneralTarget validates a configured general target, falling
// back to GeneralToImplementation for unknown values.
func ParseGeneralTarget(s string) GeneralTarget {
	switch GeneralTarget(strings.ToLower(strings.TrimSpace(s))) {
	case GeneralToSurvey:
		return GeneralToSurvey
	case GeneralSkip:
		return GeneralSkip
	default:
		return GeneralToImplementation
	}
}

// RoutingTable is the static label-to-profile mapping. One explicit
// field per non-general label keeps the mapping a closed enumeration:
// there is no way to register a profile for a label the type does not
// name.
type RoutingTable struct {
	Implementation RoutingProfile
	MotionPlanning RoutingProfile
	TaskAndMotion  RoutingProfile

	// GeneralTarget decides how LabelGeneral resolves.
	GeneralTarget GeneralTarget
}

// ProfileFor resolves a label to its profile. The boolean is false
// only for LabelGeneral with GeneralSkip configured, meaning the
// question should be answered with an explicit skip rather than a
// retrieval call.
func (t RoutingTable) ProfileFor(label RoutingLabel) (RoutingProfile, bool) {
	switch label {
	case LabelImplementation:
		return t.Implementation, true
	case LabelMotionPlanning:
		return t.MotionPlanning, true
	case LabelTaskAndMotionPlanning:
		return t.TaskAndMotion, true
	default:
		switch t.GeneralTarget {
		case GeneralToSurvey:
			// Whole survey collection, no topic filter.
			p := t.MotionPlanning
			p.Label = LabelGeneral
			p.Filter = nil
			return p, true
		case GeneralSkip:
			return RoutingProfile{Label: LabelGeneral}, false
		default:
			p := t.Implementation
			p.Label = LabelGeneral
			return p, true
		}
	}
}

// Classification is the parsed output of the classifier call.
type Classification struct {
	Label  RoutingLabel
	Reason string

	// Raw is the unmodified model response, kept for diagnostics.
	Raw string
}

// RouteOptions configures a routed query.
type RouteOptions struct {
	// TopK and AutoFilter are passed through to the retrieval call.
	TopK       int
	AutoFilter bool

	// Temperature for answer generation. The classifier always runs
	// at temperature zero.
	Temperature float64
}

// RouteResult is the outcome of classification plus (unless skipped)
// one retrieval-augmented query.
type RouteResult struct {
	Classification Classification
	Profile        RoutingProfile

	// Skipped is true when the general target is skip: no retrieval
	// was performed and Query is nil.
	Skipped bool

	Query *QueryResult
}
