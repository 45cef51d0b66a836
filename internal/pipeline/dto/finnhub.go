package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FinnhubCalendarResponse is the body of GET /calendar/economic. Elements are
// kept raw so that one malformed release does not fail the whole batch.
type FinnhubCalendarResponse struct {
	EconomicCalendar []json.RawMessage `json:"economicCalendar"`
}

// FinnhubEconomicEvent is one raw release from the calendar feed.
type FinnhubEconomicEvent struct {
	Country  string      `json:"country"`
	Event    string      `json:"event"`
	Impact   string      `json:"impact"`
	Actual   NumericText `json:"actual"`
	Estimate NumericText `json:"estimate"`
	Prev     NumericText `json:"prev"`
	Unit     string      `json:"unit"`
	Time     EpochTime   `json:"time"`
}

// FinnhubNewsArticle is one raw article from GET /news (also produced from RSS feeds).
type FinnhubNewsArticle struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Related  string `json:"related"`
}

// NumericText keeps a provider value as text. The feed sends numbers, numeric
// strings or null; Valid is false only for null or a missing field. Anything else
// is kept verbatim so the release is still recorded and scores zero.
type NumericText struct {
	Text  string
	Valid bool
}

// NewNumericText returns a valid value.
func NewNumericText(s string) NumericText {
	return NumericText{Text: s, Valid: true}
}

// Ptr returns nil for null, otherwise a pointer to the text.
func (n NumericText) Ptr() *string {
	if !n.Valid {
		return nil
	}
	s := n.Text
	return &s
}

func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = NumericText{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText{Text: s, Valid: true}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		*n = NumericText{Text: string(data), Valid: true}
		return nil
	}
	*n = NumericText{Text: num.String(), Valid: true}
	return nil
}

func (n NumericText) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Text)
}

// EpochTime is a release time in epoch seconds. The feed sends either a number
// or a UTC "2006-01-02 15:04:05" string, sometimes without seconds.
type EpochTime int64

var calendarTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
}

func (e *EpochTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = 0
		return nil
	}
	if data[0] != '"' {
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("epoch time: %w", err)
		}
		v, err := num.Int64()
		if err != nil {
			f, ferr := num.Float64()
			if ferr != nil {
				return fmt.Errorf("epoch time: %w", err)
			}
			v = int64(f)
		}
		*e = EpochTime(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*e = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*e = EpochTime(v)
		return nil
	}
	for _, layout := range calendarTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*e = EpochTime(t.Unix())
			return nil
		}
	}
	return fmt.Errorf("epoch time: unsupported format %q", s)
}

// Int64 returns the epoch seconds.
func (e EpochTime) Int64() int64 {
	return int64(e)
}
