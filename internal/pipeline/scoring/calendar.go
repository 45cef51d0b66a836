package scoring

import (
	"fmt"
	"sort"
	"time"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/utils"
)

// EventID builds the registry identifier of a release. Titles are used verbatim.
func EventID(country, title string, releaseEpoch int64) string {
	return fmt.Sprintf("%s_%s_%d", country, title, releaseEpoch)
}

// Candidate is a released event (actual present) that may still be known to the registry.
type Candidate struct {
	EventID string
	Raw     dto.FinnhubEconomicEvent
	Impact  entity.ImpactLevel
}

// Candidates keeps events that carry an actual value, computes their ids and drops
// repeats within the batch. In high-impact mode only high-tier events are kept.
func Candidates(raw []dto.FinnhubEconomicEvent, highImpactOnly bool) []Candidate {
	seen := make(map[string]struct{}, len(raw))
	out := make([]Candidate, 0, len(raw))
	for _, ev := range raw {
		if !ev.Actual.Valid {
			continue
		}
		impact := entity.ParseImpact(ev.Impact)
		if highImpactOnly && impact != entity.ImpactHigh {
			continue
		}
		id := EventID(ev.Country, ev.Event, ev.Time.Int64())
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Candidate{EventID: id, Raw: ev, Impact: impact})
	}
	return out
}

// CandidateIDs returns the ids of cs in order.
func CandidateIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.EventID
	}
	return ids
}

// CalendarPlan is the state delta of one calendar cycle: rows to insert-once and the
// currencies whose aggregate must be recomputed if those rows land.
type CalendarPlan struct {
	Events []*entity.EconomicEvent
}

// PlanCalendar scores every candidate absent from existing. It performs no I/O.
func PlanCalendar(candidates []Candidate, existing map[string]struct{}, now time.Time) CalendarPlan {
	plan := CalendarPlan{Events: make([]*entity.EconomicEvent, 0, len(candidates))}
	for _, c := range candidates {
		if _, known := existing[c.EventID]; known {
			continue
		}
		currency, _ := CurrencyForCountry(c.Raw.Country)
		date, clock := utils.SplitEpoch(c.Raw.Time.Int64())
		actual, forecast := c.Raw.Actual.Ptr(), c.Raw.Estimate.Ptr()

		plan.Events = append(plan.Events, &entity.EconomicEvent{
			EventID:     c.EventID,
			Country:     c.Raw.Country,
			Currency:    currency,
			Title:       c.Raw.Event,
			Impact:      c.Impact,
			Actual:      actual,
			Forecast:    forecast,
			Previous:    c.Raw.Prev.Ptr(),
			EventDate:   date,
			EventTime:   clock,
			Score:       Score(actual, forecast, c.Impact),
			ProcessedAt: now,
		})
	}
	return plan
}

// TouchedCurrencies returns the sorted, distinct mapped currencies of events.
// Events of unmapped countries never trigger a recompute.
func TouchedCurrencies(events []*entity.EconomicEvent) []string {
	set := make(map[string]struct{})
	for _, ev := range events {
		if c, ok := CurrencyForCountry(ev.Country); ok {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
