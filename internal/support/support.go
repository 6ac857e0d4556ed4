// Package support implements the Wisconsin percentage-of-income child
// support guideline.
package support

import (
	"math"

	"github.com/tbcolby/settlement-game/internal/model"
)

// guidelineRates maps child count to the share of payor income. Counts above
// five use the five-child rate.
var guidelineRates = map[int]float64{
	1: 0.17,
	2: 0.25,
	3: 0.29,
	4: 0.31,
	5: 0.34,
}

const (
	// sharedPlacementFloor is the payor placement percentage above which a
	// shared-placement credit applies.
	sharedPlacementFloor = 25.0
	sharedPlacementSpan  = 25.0
	maxCreditShare       = 0.5
)

type options struct {
	healthInsurance float64
	childcare       float64
}

type Option func(*options)

// WithHealthInsurance sets the monthly health insurance add-on.
func WithHealthInsurance(cost float64) Option {
	return func(o *options) { o.healthInsurance = cost }
}

// WithChildcare sets the monthly childcare add-on.
func WithChildcare(cost float64) Option {
	return func(o *options) { o.childcare = cost }
}

// GuidelineRate returns the guideline percentage as a fraction. Fewer than
// one child yields zero.
func GuidelineRate(children int) float64 {
	if children < 1 {
		return 0
	}
	return guidelineRates[min(children, 5)]
}

// Calculate computes guideline child support for the payor. It never returns
// a negative, NaN or infinite final amount for finite inputs.
func Calculate(payorIncome, payeeIncome float64, children int, payorPlacement float64, opts ...Option) model.ChildSupportCalculation {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rate := GuidelineRate(children)
	guideline := payorIncome * rate

	credit := 0.0
	if payorPlacement > sharedPlacementFloor {
		fraction := math.Min((payorPlacement-sharedPlacementFloor)/sharedPlacementSpan, 1)
		credit = guideline * fraction * maxCreditShare
	}

	addOn := 0.0
	if combined := payorIncome + payeeIncome; combined > 0 {
		addOn = (o.healthInsurance + o.childcare) * (payorIncome / combined)
	}

	final := guideline - credit + addOn
	if math.IsNaN(final) || final < 0 {
		final = 0
	}

	return model.ChildSupportCalculation{
		PayorIncome:           payorIncome,
		PayeeIncome:           payeeIncome,
		NumberOfChildren:      children,
		PlacementPercentage:   payorPlacement,
		GuidelinePercentage:   rate,
		GuidelineAmount:       guideline,
		SharedPlacementCredit: credit,
		HealthInsuranceCost:   o.healthInsurance,
		ChildcareCost:         o.childcare,
		PayorAddOnShare:       addOn,
		FinalAmount:           final,
	}
}
