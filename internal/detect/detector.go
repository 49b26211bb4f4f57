// Package detect implements the heuristic vulnerability detectors that
// run against observed transactions and optional contract source.
package detect

import (
	"log/slog"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// PatternDetector is a stateless predicate over a transaction and
// optional contract source code. Detect must be pure: identical inputs
// always yield the same verdict.
type PatternDetector interface {
	// Pattern returns the static identity attached to a match.
	Pattern() domain.Pattern

	// Detect reports whether the pattern matches. code may be empty.
	Detect(tx *domain.Transaction, code string) bool
}

// Builtin returns the detectors defined at startup, in a fixed order
// so matched-pattern lists are deterministic for a given input.
func Builtin() []PatternDetector {
	return []PatternDetector{
		NewReentrancyDetector(),
		NewOverflowDetector(),
		NewAccessControlDetector(),
		NewFlashLoanDetector(),
	}
}

// SafeDetect runs a detector and converts any panic into "no match".
// A faulty detector must never crash the pipeline or block its
// siblings; the error is logged and swallowed.
func SafeDetect(d PatternDetector, tx *domain.Transaction, code string) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Pattern detector panicked, treating as no match",
				"pattern", d.Pattern().ID, "tx", tx.Hash, "panic", r)
			matched = false
		}
	}()
	return d.Detect(tx, code)
}
