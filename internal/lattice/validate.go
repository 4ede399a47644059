package lattice

import (
	"math"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/models"
)

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func checkFinite(field string, x float64) error {
	if !isFinite(x) {
		return apperrors.NewValidationError(field, x, "must be finite")
	}
	return nil
}

func checkPositiveFinite(field string, x float64) error {
	if !isFinite(x) || x <= 0 {
		return apperrors.NewValidationError(field, x, "must be finite and positive")
	}
	return nil
}

func checkSteps(field string, n int) error {
	if n <= 0 {
		return apperrors.NewValidationError(field, float64(n), "must be a positive integer")
	}
	return nil
}

// ValidateOption checks a single-asset input set. Volatility is only
// required by methods that derive their grid from it.
func ValidateOption(p models.OptionParams, needVolatility bool) error {
	if p.Type != models.OptionTypeCall && p.Type != models.OptionTypePut {
		return apperrors.NewValidationError("type", math.NaN(), "must be CALL or PUT")
	}
	if p.Style != models.StyleEuropean && p.Style != models.StyleAmerican {
		return apperrors.NewValidationError("style", math.NaN(), "must be EUROPEAN or AMERICAN")
	}
	if err := checkPositiveFinite("strike", p.Strike); err != nil {
		return err
	}
	if err := checkPositiveFinite("maturity", p.Maturity); err != nil {
		return err
	}
	if err := checkPositiveFinite("spot", p.Spot); err != nil {
		return err
	}
	if needVolatility {
		if err := checkPositiveFinite("volatility", p.Volatility); err != nil {
			return err
		}
	} else if err := checkFinite("volatility", p.Volatility); err != nil {
		return err
	}
	if err := checkFinite("dividend", p.Dividend); err != nil {
		return err
	}
	return checkFinite("rate", p.Rate)
}

// ValidateSpread checks a two-asset input set.
func ValidateSpread(p models.SpreadParams) error {
	if p.Style != models.StyleEuropean && p.Style != models.StyleAmerican {
		return apperrors.NewValidationError("style", math.NaN(), "must be EUROPEAN or AMERICAN")
	}
	if !isFinite(p.Strike) || p.Strike < 0 {
		return apperrors.NewValidationError("strike", p.Strike, "must be finite and non-negative")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"maturity", p.Maturity},
		{"spot1", p.Spot1},
		{"spot2", p.Spot2},
		{"volatility1", p.Volatility1},
		{"volatility2", p.Volatility2},
	} {
		if err := checkPositiveFinite(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"dividend1", p.Dividend1},
		{"dividend2", p.Dividend2},
		{"rate", p.Rate},
	} {
		if err := checkFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if !isFinite(p.Correlation) || p.Correlation < -1 || p.Correlation > 1 {
		return apperrors.NewValidationError("correlation", p.Correlation, "must lie in [-1, 1]")
	}
	return nil
}
