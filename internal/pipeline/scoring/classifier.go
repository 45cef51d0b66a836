package scoring

import (
	"strings"

	"golang-forex-pulse/internal/entity"
)

var highImpactKeywords = []string{
	"federal reserve", "fed", "ecb", "central bank", "interest rate",
	"nfp", "non-farm", "employment", "unemployment", "cpi", "inflation",
	"gdp", "fomc", "rate cut", "rate hike", "policy", "crisis",
}

var mediumImpactKeywords = []string{
	"retail sales", "consumer", "manufacturing", "pmi", "jobs",
	"housing", "trade", "deficit", "surplus", "earnings",
}

var categoryImpact = map[string]entity.ImpactLevel{
	"forex":   entity.ImpactHigh,
	"crypto":  entity.ImpactHigh,
	"merger":  entity.ImpactHigh,
	"ipo":     entity.ImpactMedium,
	"company": entity.ImpactMedium,
	"general": entity.ImpactLow,
}

// Classify assigns an impact tier to an article. Keywords are matched as
// case-insensitive substrings of headline and summary; high keywords win over
// medium ones, and the category decides only when nothing matches.
func Classify(headline, summary, category string) entity.ImpactLevel {
	text := strings.ToLower(headline + " " + summary)

	if containsAny(text, highImpactKeywords) {
		return entity.ImpactHigh
	}
	if containsAny(text, mediumImpactKeywords) {
		return entity.ImpactMedium
	}
	if impact, ok := categoryImpact[strings.ToLower(strings.TrimSpace(category))]; ok {
		return impact
	}
	return entity.ImpactLow
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
