package scoring

import "fmt"

// FactorResult captures one factor's contribution to the base score.
type FactorResult struct {
	Name         string  `json:"name"`
	Input        float64 `json:"input"`
	Contribution float64 `json:"contribution"`
	Capped       bool    `json:"capped"`
	Reason       string  `json:"reason"`
}

// AgeFactor penalises applicants under 25 and rewards those over 45.
// 25 through 45 inclusive is neutral.
func AgeFactor(f ClientFeatures) FactorResult {
	age := float64(f.Age)
	switch {
	case f.Age < 25:
		return FactorResult{Name: "age", Input: age, Contribution: -0.1, Reason: "under 25"}
	case f.Age > 45:
		return FactorResult{Name: "age", Input: age, Contribution: 0.1, Reason: "over 45"}
	default:
		return FactorResult{Name: "age", Input: age, Contribution: 0, Reason: "25 to 45 neutral"}
	}
}

// IncomeFactor ramps linearly over 100k, capped at 0.3.
func IncomeFactor(f ClientFeatures) FactorResult {
	return rampFactor("income", f.Income, 100000, 0.3)
}

// TenureFactor ramps linearly over 60 months on book, capped at 0.2.
func TenureFactor(f ClientFeatures) FactorResult {
	return rampFactor("months_on_book", float64(f.MonthsOnBook), 60, 0.2)
}

// CreditLimitFactor ramps linearly over a 50k limit, capped at 0.2.
func CreditLimitFactor(f ClientFeatures) FactorResult {
	return rampFactor("credit_limit", f.CreditLimit, 50000, 0.2)
}

func rampFactor(name string, value, scale, ceiling float64) FactorResult {
	ramp := value / scale
	if ramp >= ceiling {
		return FactorResult{Name: name, Input: value, Contribution: ceiling, Capped: true, Reason: fmt.Sprintf("capped at %g", ceiling)}
	}
	return FactorResult{Name: name, Input: value, Contribution: ramp, Reason: fmt.Sprintf("linear over %g", scale)}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
