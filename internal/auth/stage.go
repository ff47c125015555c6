package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current stage.
var ErrInvalidTransition = errors.New("invalid stage transition")

// Stage is the step of an authentication attempt.
type Stage int

const (
	StageInstructions Stage = iota
	StageRecording
	StageProcessing
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageInstructions:
		return "instructions"
	case StageRecording:
		return "recording"
	case StageProcessing:
		return "processing"
	case StageResult:
		return "result"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Outcome is the verdict of an attempt. It is OutcomeNone outside StageResult.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// CanTransition reports whether from -> to is an edge of the attempt state
// machine. The only backward edge is result -> instructions, and it is only
// taken after a failure.
func CanTransition(from, to Stage) bool {
	switch from {
	case StageInstructions:
		return to == StageRecording
	case StageRecording:
		return to == StageProcessing
	case StageProcessing:
		return to == StageResult
	case StageResult:
		return to == StageInstructions
	default:
		return false
	}
}
