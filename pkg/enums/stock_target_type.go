package enums

import "fmt"

// StockTargetType identifies which kind of entity a stock adjustment touched.
type StockTargetType string

const (
	StockTargetProduct     StockTargetType = "product"
	StockTargetRawMaterial StockTargetType = "raw_material"
)

var validStockTargetTypes = []StockTargetType{
	StockTargetProduct,
	StockTargetRawMaterial,
}

// IsValid reports whether the value matches the canonical target type enum.
func (t StockTargetType) IsValid() bool {
	for _, candidate := range validStockTargetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockTargetType converts raw input into StockTargetType.
func ParseStockTargetType(value string) (StockTargetType, error) {
	for _, candidate := range validStockTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock target type %q", value)
}
