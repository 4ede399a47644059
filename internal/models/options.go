package models

// OptionParams holds the inputs of a single-asset pricing run.
type OptionParams struct {
	Type       OptionType    `json:"type"`
	Style      ExerciseStyle `json:"style"`
	Strike     float64       `json:"strike"`
	Maturity   float64       `json:"maturity"` // years
	Spot       float64       `json:"spot"`
	Volatility float64       `json:"volatility"`
	Dividend   float64       `json:"dividend"` // continuous yield
	Rate       float64       `json:"rate"`     // continuously compounded
}

// WithSpot returns a copy of p with the spot replaced.
func (p OptionParams) WithSpot(spot float64) OptionParams {
	p.Spot = spot
	return p
}

// WithType returns a copy of p with the option type replaced.
func (p OptionParams) WithType(t OptionType) OptionParams {
	p.Type = t
	return p
}

// WithStyle returns a copy of p with the exercise style replaced.
func (p OptionParams) WithStyle(s ExerciseStyle) OptionParams {
	p.Style = s
	return p
}

// SpreadParams holds the inputs of a two-asset spread option, payoff
// max(0, S1 - S2 - K).
type SpreadParams struct {
	Style       ExerciseStyle `json:"style"`
	Strike      float64       `json:"strike"`
	Maturity    float64       `json:"maturity"`
	Spot1       float64       `json:"spot1"`
	Spot2       float64       `json:"spot2"`
	Volatility1 float64       `json:"volatility1"`
	Volatility2 float64       `json:"volatility2"`
	Dividend1   float64       `json:"dividend1"`
	Dividend2   float64       `json:"dividend2"`
	Correlation float64       `json:"correlation"`
	Rate        float64       `json:"rate"`
}

// WithCorrelation returns a copy of p with the correlation replaced.
func (p SpreadParams) WithCorrelation(rho float64) SpreadParams {
	p.Correlation = rho
	return p
}

// WithStyle returns a copy of p with the exercise style replaced.
func (p SpreadParams) WithStyle(s ExerciseStyle) SpreadParams {
	p.Style = s
	return p
}
