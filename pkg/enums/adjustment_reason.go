package enums

import "fmt"

// AdjustmentReason enumerates the operator-selectable reasons for a manual
// stock adjustment. Ledger entries written by order or purchase flows carry
// free-text reasons instead.
type AdjustmentReason string

const (
	AdjustmentReasonStocktake       AdjustmentReason = "stocktake"
	AdjustmentReasonCustomerReturn  AdjustmentReason = "customer_return"
	AdjustmentReasonQualityOutbound AdjustmentReason = "quality_outbound"
	AdjustmentReasonProductionIssue AdjustmentReason = "production_issue"
	AdjustmentReasonShrinkage       AdjustmentReason = "shrinkage"
	AdjustmentReasonOther           AdjustmentReason = "other"
)

var validAdjustmentReasons = []AdjustmentReason{
	AdjustmentReasonStocktake,
	AdjustmentReasonCustomerReturn,
	AdjustmentReasonQualityOutbound,
	AdjustmentReasonProductionIssue,
	AdjustmentReasonShrinkage,
	AdjustmentReasonOther,
}

// IsValid reports whether the value matches the canonical reason enum.
func (r AdjustmentReason) IsValid() bool {
	for _, candidate := range validAdjustmentReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseAdjustmentReason converts raw input into AdjustmentReason.
func ParseAdjustmentReason(value string) (AdjustmentReason, error) {
	for _, candidate := range validAdjustmentReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment reason %q", value)
}
