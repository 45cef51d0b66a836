package entity

import "strings"

// ImpactLevel is the market-significance tier of a release or article.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// ParseImpact maps provider text ("High", "medium", "") to a tier. Unknown values are low.
func ParseImpact(s string) ImpactLevel {
	switch ImpactLevel(strings.ToLower(strings.TrimSpace(s))) {
	case ImpactHigh:
		return ImpactHigh
	case ImpactMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// Weight is the multiplier applied to a surprise score.
func (i ImpactLevel) Weight() float64 {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	default:
		return 1
	}
}

func (i ImpactLevel) String() string {
	return string(i)
}
