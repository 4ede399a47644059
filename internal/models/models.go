// Package models provides domain models for the lattice pricing engine.
package models

import (
	"strings"
	"time"
)

// OptionType represents the payoff direction of a contract.
type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

// ExerciseStyle represents when a contract may be exercised.
type ExerciseStyle string

const (
	StyleEuropean ExerciseStyle = "EUROPEAN"
	StyleAmerican ExerciseStyle = "AMERICAN"
)

// ParseOptionType accepts "call"/"c" and "put"/"p" in any case.
func ParseOptionType(s string) (OptionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C":
		return OptionTypeCall, true
	case "PUT", "P":
		return OptionTypePut, true
	}
	return "", false
}

// ParseExerciseStyle accepts "european"/"eu" and "american"/"am" in any case.
func ParseExerciseStyle(s string) (ExerciseStyle, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EUROPEAN", "EU", "E":
		return StyleEuropean, true
	case "AMERICAN", "AM", "A":
		return StyleAmerican, true
	}
	return "", false
}

// IsAmerican reports whether early exercise is allowed.
func (s ExerciseStyle) IsAmerican() bool {
	return s == StyleAmerican
}

// PricingResult is the outcome of one pricing run.
type PricingResult struct {
	Method  string        `json:"method"`
	Value   float64       `json:"value"`
	Delta   *float64      `json:"delta,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// SimulationResult holds Monte-Carlo summary statistics.
type SimulationResult struct {
	Value  float64 `json:"value"`
	StdDev float64 `json:"std_dev"`
	StdErr float64 `json:"std_err"`
	Paths  int     `json:"paths"`
	Steps  int     `json:"steps"`
}
