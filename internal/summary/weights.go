package summary

import (
	"fmt"
	"sort"
	"strings"
)

// MinutesPerMatch converts minutes into full-match equivalents.
const MinutesPerMatch = 90.0

// RatingParams are the constants of the adjusted rating:
//
//	matches_eq = (minutes / 90) ^ Alpha
//	base       = (matches_eq * mean + K * global_mean) / (matches_eq + K)
//	bonus      = Gamma * (minutes / max_minutes) ^ Beta
type RatingParams struct {
	K     float64 `json:"k"`
	Alpha float64 `json:"alpha"`
	Gamma float64 `json:"gamma"`
	Beta  float64 `json:"beta"`
}

// Presets for the formula revisions used across seasons.
var (
	// PresetClassic is plain smoothing towards the team mean, no bonus.
	PresetClassic = RatingParams{K: 20, Alpha: 1, Gamma: 0, Beta: 2}
	// PresetSmoothed adds a quadratic playing-time bonus.
	PresetSmoothed = RatingParams{K: 25, Alpha: 1, Gamma: 0.25, Beta: 2}
	// PresetVolume weights minutes quadratically and smooths harder.
	PresetVolume = RatingParams{K: 60, Alpha: 2, Gamma: 0.25, Beta: 2}

	DefaultRatingParams = PresetSmoothed
)

var presets = map[string]RatingParams{
	"classic":  PresetClassic,
	"smoothed": PresetSmoothed,
	"volume":   PresetVolume,
}

// LookupPreset resolves a preset by name; empty means the default.
func LookupPreset(name string) (RatingParams, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return DefaultRatingParams, nil
	}
	p, ok := presets[name]
	if !ok {
		return RatingParams{}, fmt.Errorf("unknown rating preset: %q (want %s)", name, strings.Join(PresetNames(), "|"))
	}
	return p, nil
}

// ResolveRatingParams starts from the named preset and replaces each
// constant given a non-nil override. The result is validated.
func ResolveRatingParams(preset string, k, alpha, gamma, beta *float64) (RatingParams, error) {
	p, err := LookupPreset(preset)
	if err != nil {
		return p, err
	}
	if k != nil {
		p.K = *k
	}
	if alpha != nil {
		p.Alpha = *alpha
	}
	if gamma != nil {
		p.Gamma = *gamma
	}
	if beta != nil {
		p.Beta = *beta
	}
	return p, p.Validate()
}

func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for n := range presets {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (p RatingParams) Validate() error {
	switch {
	case p.K <= 0:
		return fmt.Errorf("k must be > 0, got %v", p.K)
	case p.Alpha < 1:
		return fmt.Errorf("alpha must be >= 1, got %v", p.Alpha)
	case p.Gamma < 0:
		return fmt.Errorf("gamma must be >= 0, got %v", p.Gamma)
	case p.Beta <= 0:
		return fmt.Errorf("beta must be > 0, got %v", p.Beta)
	}
	return nil
}
