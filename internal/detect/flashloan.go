package detect

import (
	"math/big"
	"strings"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// flashLoanValueThreshold is 10^20 base units; transfers above it are
// large enough to move a price.
var flashLoanValueThreshold = new(big.Int).Exp(big.NewInt(10), big.NewInt(20), nil)

const flashLoanMinSegments = 3
const flashLoanMinPriceKeywords = 3

var (
	flashLoanKeywords = []string{
		"flashloan", "flash_loan", "flashborrow", "flash_borrow", "flashswap", "flash_swap",
	}
	priceKeywords = []string{
		"price", "oracle", "swap", "liquidity", "pool", "reserve", "twap", "rate",
	}
	oracleCallTokens = []string{
		"get_price", "price_oracle", "oracle",
	}
	twapMarkers = []string{
		"twap", "time_weighted", "average_price",
	}
	priceDependentTokens = []string{
		"get_price", "price_of", "exchange_rate", "get_amount_out",
	}
	flashProtectionMarkers = []string{
		"flash_loan_guard", "flash_protection", "same_block_guard", "min_block_delta",
	}
	externalInputTokens = []string{
		"call_value", "payment", "esdt_transfer",
	}
	validationMarkers = []string{
		"require!", "assert!",
	}
)

// FlashLoanDetector flags oversized transfers paired with composite
// call chains or price-sensitive keywords, and source whose price
// handling lacks manipulation protections.
type FlashLoanDetector struct {
	pattern domain.Pattern
}

func NewFlashLoanDetector() *FlashLoanDetector {
	return &FlashLoanDetector{
		pattern: domain.Pattern{
			ID:          domain.PatternFlashLoan,
			Name:        "Flash Loan / Price Manipulation",
			Description: "Transaction shape consistent with flash-loan driven price manipulation",
			Severity:    domain.SeverityCritical,
			Category:    "flash-loan",
		},
	}
}

func (d *FlashLoanDetector) Pattern() domain.Pattern { return d.pattern }

func (d *FlashLoanDetector) Detect(tx *domain.Transaction, code string) bool {
	payload := strings.ToLower(DecodePayload(tx.Data))

	if exceedsThreshold(tx.Value) {
		if containsAny(payload, flashLoanKeywords) {
			return true
		}
		if len(Segments(payload)) >= flashLoanMinSegments {
			return true
		}
		if countDistinct(payload, priceKeywords) >= flashLoanMinPriceKeywords {
			return true
		}
	}

	if code == "" {
		return false
	}
	lower := strings.ToLower(code)

	// Oracle reads without a time-weighted average.
	if containsAny(lower, oracleCallTokens) && !containsAny(lower, twapMarkers) {
		return true
	}
	// Price-dependent logic without a flash-loan protection marker.
	if containsAny(lower, priceDependentTokens) && !containsAny(lower, flashProtectionMarkers) {
		return true
	}
	// External-input-dependent code without validation.
	if containsAny(lower, externalInputTokens) && !containsAny(lower, validationMarkers) {
		return true
	}
	return false
}

func exceedsThreshold(value string) bool {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return false
	}
	return v.Cmp(flashLoanValueThreshold) > 0
}
