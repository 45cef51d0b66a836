package scoring

import (
	"math"
	"strconv"
	"strings"

	"golang-forex-pulse/internal/entity"
)

// Score is the signed surprise of a release: the percentage deviation of actual from
// forecast, multiplied by the impact weight and rounded to two decimals. It returns 0
// when either value is missing or unparsable, or when the forecast is zero.
func Score(actual, forecast *string, impact entity.ImpactLevel) float64 {
	if actual == nil || forecast == nil {
		return 0
	}
	a, ok := parseValue(*actual)
	if !ok {
		return 0
	}
	f, ok := parseValue(*forecast)
	if !ok || f == 0 {
		return 0
	}

	diff := (a - f) / math.Abs(f)
	return roundHalfUp(diff*impact.Weight()*100*100) / 100
}

// parseValue accepts plain decimals and a trailing percent sign.
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
