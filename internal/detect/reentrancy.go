package detect

import (
	"strings"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// Token lists are part of the detection behavior; changing them
// changes which transactions get flagged.
var (
	reentrancyTransferTokens = []string{
		"transfer", "send", "call_value", "async_call", "direct_egld",
	}
	reentrancyMutationTokens = []string{
		"storage_set", "set_mapper", "update", "write_state", "state_set",
	}
	reentrancyExternalCallTokens = []string{
		".transfer_egld", "send().direct", ".async_call", ".transfer_execute", ".call_value",
	}
	reentrancyStateMutationTokens = []string{
		".set(", "storage_set", "+=", "-=", ".update(",
	}
	reentrancyGuardTokens = []string{
		"reentrancy_guard", "reentrancyguard", "nonreentrant", "non_reentrant", "mutex",
	}
)

// ReentrancyDetector flags call payloads and contract bodies where an
// external value transfer can re-enter before state is settled.
type ReentrancyDetector struct {
	pattern domain.Pattern
}

func NewReentrancyDetector() *ReentrancyDetector {
	return &ReentrancyDetector{
		pattern: domain.Pattern{
			ID:          domain.PatternReentrancy,
			Name:        "Reentrancy",
			Description: "External call may re-enter the contract before state mutations complete",
			Severity:    domain.SeverityCritical,
			Category:    "reentrancy",
		},
	}
}

func (d *ReentrancyDetector) Pattern() domain.Pattern { return d.pattern }

func (d *ReentrancyDetector) Detect(tx *domain.Transaction, code string) bool {
	payload := strings.ToLower(DecodePayload(tx.Data))

	// Payload mentions a transfer-like call followed by a state
	// mutation: the unsafe order.
	if payload != "" {
		transferIdx := firstIndexAny(payload, reentrancyTransferTokens)
		if transferIdx >= 0 && lastIndexAny(payload, reentrancyMutationTokens) > transferIdx {
			return true
		}
	}

	if code == "" {
		return false
	}
	lower := strings.ToLower(code)
	if containsAny(lower, reentrancyGuardTokens) {
		return false
	}

	// External call appearing before a state mutation in the source.
	callIdx := firstIndexAny(lower, reentrancyExternalCallTokens)
	if callIdx < 0 {
		return false
	}
	return lastIndexAny(lower, reentrancyStateMutationTokens) > callIdx
}
