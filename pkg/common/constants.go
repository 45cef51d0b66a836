package common

const (
	RedisStreamHighImpact = "calendar.high_impact"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"

	// HeaderAPIKey carries the shared trigger secret. QueryAPIKey is the query-string fallback.
	HeaderAPIKey = "X-API-Key"
	QueryAPIKey  = "api_key"
)
