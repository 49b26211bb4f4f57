package detect

import (
	"strings"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// sensitiveVerbs lists admin-like operations, compared against
// normalized function names (lowercase, underscores stripped).
var sensitiveVerbs = []string{
	"setowner", "changeowner", "transferownership", "withdraw", "withdrawall",
	"pause", "unpause", "upgrade", "setadmin", "addadmin", "removeadmin",
	"setfee", "blacklist", "selfdestruct", "destroy",
}

// authMarkers are accepted authorization checks inside a function body.
var authMarkers = []string{
	"only_owner", "onlyowner", "#[only_owner]",
	"require!(caller==owner", "require!(caller == owner",
	"get_caller() == self.owner", "caller==self.owner",
	"require_caller", "check_admin", "has_role", "require_role",
}

// AccessControlDetector flags calls to admin-like functions and source
// that defines sensitive endpoints without any authorization check.
type AccessControlDetector struct {
	pattern domain.Pattern
}

func NewAccessControlDetector() *AccessControlDetector {
	return &AccessControlDetector{
		pattern: domain.Pattern{
			ID:          domain.PatternAccessControl,
			Name:        "Missing Access Control",
			Description: "Sensitive operation reachable without an authorization check",
			Severity:    domain.SeverityHigh,
			Category:    "access-control",
		},
	}
}

func (d *AccessControlDetector) Pattern() domain.Pattern { return d.pattern }

func (d *AccessControlDetector) Detect(tx *domain.Transaction, code string) bool {
	payload := DecodePayload(tx.Data)
	if payload != "" {
		name := normalizeName(FunctionName(payload))
		for _, verb := range sensitiveVerbs {
			if name == verb {
				return true
			}
		}
	}

	if code == "" {
		return false
	}
	return hasUnprotectedSensitiveFunction(code)
}

// hasUnprotectedSensitiveFunction scans for a sensitive function whose
// body (up to the next function definition) lacks every auth marker.
func hasUnprotectedSensitiveFunction(code string) bool {
	lower := strings.ToLower(code)
	for _, verb := range sensitiveVerbs {
		start := 0
		for {
			idx := strings.Index(lower[start:], "fn ")
			if idx < 0 {
				break
			}
			idx += start
			body := functionBody(lower, idx)
			header := body
			if nl := strings.IndexByte(body, '\n'); nl >= 0 {
				header = body[:nl]
			}
			if strings.Contains(normalizeName(header), verb) && !containsAny(body, authMarkers) {
				return true
			}
			start = idx + 3
		}
	}
	return false
}

// functionBody returns the source slice from a "fn " definition to the
// next one, which is a good enough scope boundary for keyword scans.
func functionBody(code string, fnIdx int) string {
	rest := code[fnIdx+3:]
	if next := strings.Index(rest, "fn "); next >= 0 {
		return code[fnIdx : fnIdx+3+next]
	}
	return code[fnIdx:]
}
