package auth

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Passphrase is the phrase the user is asked to speak.
const Passphrase = "my voice is my secure password"

// DefaultFailureRate is the chance that a transcript matching no lexical
// rule is rejected.
const DefaultFailureRate = 0.1

// minTranscriptLen is the length a transcript must exceed to pass on its own.
const minTranscriptLen = 5

// Evaluator decides the outcome of an attempt from its transcript.
type Evaluator interface {
	Evaluate(transcript string) Outcome
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(transcript string) Outcome

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(transcript string) Outcome {
	return f(transcript)
}

// Float64Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Float64Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Heuristic is the demo verifier: lexical matches always pass, everything
// else passes unless the random draw lands inside FailureRate.
type Heuristic struct {
	Passphrase  string
	Rand        Float64Source
	FailureRate float64
}

// NewHeuristic builds the standard verifier. A nil src uses the global
// math/rand/v2 generator.
func NewHeuristic(src Float64Source) *Heuristic {
	if src == nil {
		src = globalSource{}
	}

	return &Heuristic{
		Passphrase:  Passphrase,
		Rand:        src,
		FailureRate: DefaultFailureRate,
	}
}

// Evaluate implements Evaluator. The random source is only consulted when no
// lexical rule matches.
func (h *Heuristic) Evaluate(transcript string) Outcome {
	if MatchesPhrase(transcript, h.Passphrase) {
		return OutcomeSuccess
	}

	if h.Rand.Float64() > h.FailureRate {
		return OutcomeSuccess
	}

	return OutcomeFailure
}

// MatchesPhrase reports whether transcript passes on its content alone: it
// contains the passphrase, contains both "voice" and "password", or is longer
// than five characters.
func MatchesPhrase(transcript, passphrase string) bool {
	t := strings.ToLower(transcript)

	switch {
	case passphrase != "" && strings.Contains(t, strings.ToLower(passphrase)):
		return true
	case strings.Contains(t, "voice") && strings.Contains(t, "password"):
		return true
	default:
		return utf8.RuneCountInString(t) > minTranscriptLen
	}
}
