package detect

import (
	"strings"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

var (
	overflowFixedWidthTypes = []string{
		"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "usize",
	}
	overflowNarrowingCasts = []string{
		"as u8", "as u16", "as u32", "as u64", "as usize", "as i8", "as i16", "as i32",
	}
	overflowBoundCheckTokens = []string{
		"require!", "assert!", "checked_", "overflowing_", "saturating_",
	}
	overflowBigIntTypes = []string{
		"biguint", "bigint",
	}
	overflowArithmeticOps = []string{
		" + ", " - ", " * ", "+=", "-=", "*=",
	}
	overflowSafeMethods = []string{
		"checked_add", "checked_sub", "checked_mul", "saturating_add", "saturating_sub",
	}
	overflowPayloadKeywords = []string{
		"add", "subtract", "multiply", "increase", "decrease", "mint", "burn",
	}
)

// OverflowDetector flags arithmetic that can wrap: narrowing casts on
// fixed-width integers without bound checks, or big-integer math that
// avoids the checked method family.
type OverflowDetector struct {
	pattern domain.Pattern
}

func NewOverflowDetector() *OverflowDetector {
	return &OverflowDetector{
		pattern: domain.Pattern{
			ID:          domain.PatternOverflow,
			Name:        "Integer Overflow/Underflow",
			Description: "Arithmetic without bound checks may wrap around integer limits",
			Severity:    domain.SeverityHigh,
			Category:    "overflow",
		},
	}
}

func (d *OverflowDetector) Pattern() domain.Pattern { return d.pattern }

func (d *OverflowDetector) Detect(tx *domain.Transaction, code string) bool {
	if code != "" {
		lower := strings.ToLower(code)

		// Fixed-width types narrowed without a bound check.
		if containsAny(lower, overflowFixedWidthTypes) &&
			containsAny(lower, overflowNarrowingCasts) &&
			!containsAny(lower, overflowBoundCheckTokens) {
			return true
		}

		// Big-integer arithmetic bypassing the checked methods.
		if containsAny(lower, overflowBigIntTypes) &&
			containsAny(lower, overflowArithmeticOps) &&
			!containsAny(lower, overflowSafeMethods) {
			return true
		}
	}

	payload := strings.ToLower(DecodePayload(tx.Data))
	if payload == "" {
		return false
	}
	return containsAny(payload, overflowPayloadKeywords)
}
