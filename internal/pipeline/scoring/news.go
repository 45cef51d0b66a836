package scoring

import (
	"sort"
	"strings"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
)

const (
	defaultNewsSource   = "Market News"
	defaultNewsCategory = "general"
)

// SelectLatest merges the fetched categories, orders them newest first and keeps at
// most limit articles. Ties keep their fetch order.
func SelectLatest(articles []dto.FinnhubNewsArticle, limit int) []dto.FinnhubNewsArticle {
	sorted := make([]dto.FinnhubNewsArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Datetime > sorted[j].Datetime
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BuildArticle fills defaults and classifies raw. ok is false when the article has no
// usable identity (empty headline or non-positive datetime).
func BuildArticle(raw dto.FinnhubNewsArticle) (*entity.MarketNews, bool) {
	headline := strings.TrimSpace(raw.Headline)
	if headline == "" || raw.Datetime <= 0 {
		return nil, false
	}

	category := raw.Category
	if category == "" {
		category = defaultNewsCategory
	}
	source := raw.Source
	if source == "" {
		source = defaultNewsSource
	}

	return &entity.MarketNews{
		Headline:    raw.Headline,
		Summary:     raw.Summary,
		Source:      source,
		Category:    category,
		Datetime:    raw.Datetime,
		URL:         raw.URL,
		Image:       raw.Image,
		Related:     raw.Related,
		ImpactLevel: Classify(raw.Headline, raw.Summary, category),
	}, true
}
