package models

import (
	"errors"
	"fmt"
)

type FeeType string

const (
	FeeFixed   FeeType = "fixed"
	FeePercent FeeType = "percent"
)

// Fee is a charge either per successful order (fixed) or on net revenue (percent).
type Fee struct {
	Type  FeeType `json:"type" yaml:"type"`
	Value float64 `json:"value" yaml:"value"`
}

type OtherCost struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Type  FeeType `json:"type" yaml:"type"`
	Value float64 `json:"value" yaml:"value"`
}

// CostStructure is applied uniformly to every reconciled entity.
type CostStructure struct {
	PlatformFeePercent float64     `json:"platformFeePercent" yaml:"platformFeePercent"`
	OperatingFee       Fee         `json:"operatingFee" yaml:"operatingFee"`
	OtherCosts         []OtherCost `json:"otherCosts" yaml:"otherCosts"`
}

var ErrInvalidCostStructure = errors.New("invalid cost structure")

// DefaultCostStructure charges nothing.
func DefaultCostStructure() CostStructure {
	return CostStructure{OperatingFee: Fee{Type: FeeFixed}, OtherCosts: []OtherCost{}}
}

func validFeeType(t FeeType) bool {
	return t == FeeFixed || t == FeePercent
}

func (c CostStructure) Validate() error {
	if c.PlatformFeePercent < 0 || c.PlatformFeePercent > 100 {
		return fmt.Errorf("%w: platformFeePercent must be between 0 and 100, got %g", ErrInvalidCostStructure, c.PlatformFeePercent)
	}
	if !validFeeType(c.OperatingFee.Type) {
		return fmt.Errorf("%w: operatingFee type %q", ErrInvalidCostStructure, c.OperatingFee.Type)
	}
	if c.OperatingFee.Value < 0 {
		return fmt.Errorf("%w: operatingFee value must not be negative", ErrInvalidCostStructure)
	}
	for _, oc := range c.OtherCosts {
		if !validFeeType(oc.Type) {
			return fmt.Errorf("%w: other cost %q has type %q", ErrInvalidCostStructure, oc.Name, oc.Type)
		}
		if oc.Value < 0 {
			return fmt.Errorf("%w: other cost %q value must not be negative", ErrInvalidCostStructure, oc.Name)
		}
	}
	return nil
}

// FeeBreakdown holds the fees charged to one entity.
type FeeBreakdown struct {
	Platform  float64 `json:"platform"`
	Operating float64 `json:"operating"`
	Other     float64 `json:"other"`
}

func (f FeeBreakdown) Total() float64 {
	return f.Platform + f.Operating + f.Other
}
