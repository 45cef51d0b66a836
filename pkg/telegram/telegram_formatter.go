package telegram

import (
	"fmt"
	"strings"

	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/utils"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatHighImpactReleases renders an escalation as one or more Markdown messages,
// each within Telegram's message length limit.
func FormatHighImpactReleases(msg *dto.HighImpactDetected) []string {
	if msg == nil || len(msg.Releases) == 0 {
		return nil
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString("🚨 *High Impact Economic Release* 🚨\n")
			current.WriteString(fmt.Sprintf("🕒 %s\n\n", utils.FormatCycleTimestamp(msg.DetectedAt)))
		} else {
			current.WriteString(fmt.Sprintf("---*High Impact Release Part %d*---\n\n", part))
		}
	}
	startNewPart()

	for _, r := range msg.Releases {
		entry := formatRelease(r)
		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}
	messages = append(messages, current.String())

	return messages
}

func formatRelease(r dto.HighImpactRelease) string {
	icon := "⚪"
	switch {
	case r.Score > 0:
		icon = "🟢"
	case r.Score < 0:
		icon = "🔴"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s* %s\n", icon, r.Currency, markdownEscaper.Replace(r.Title)))
	b.WriteString(fmt.Sprintf("Actual: %s | Forecast: %s\n", valueOrDash(r.Actual), valueOrDash(r.Forecast)))
	b.WriteString(fmt.Sprintf("Surprise score: %+.2f\n\n", r.Score))
	return b.String()
}

func valueOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return markdownEscaper.Replace(*v)
}
