package outbox

import "time"

// Domain event types emitted by the gamification services.
const (
	EventTypeBadgeEarned        = "BADGE_EARNED"
	EventTypeLevelUp            = "LEVEL_UP"
	EventTypeQuestCompleted     = "QUEST_COMPLETED"
	EventTypeLeaderboardUpdated = "LEADERBOARD_UPDATED"
	EventTypeStreakUpdated      = "STREAK_UPDATED"
)

// Event is a domain event handed to the writer. The body is an arbitrary
// serializable value; the event type discriminator plus the opaque payload
// form the tagged union consumers switch on.
type Event struct {
	// ID identifies the originating domain event and is the consumer-side
	// deduplication key. Populated with a fresh uuid when empty.
	ID string `json:"eventId"`

	// Type is the string discriminator used for topic routing.
	Type string `json:"eventType"`

	// Subject identifies the entity the event is about (typically a user
	// id) and becomes the partition key. Optional.
	Subject string `json:"subject,omitempty"`

	// OccurredAt is when the domain event happened. Populated with the
	// current time when zero.
	OccurredAt time.Time `json:"occurredAt"`

	// Body carries the event-specific data.
	Body any `json:"data,omitempty"`
}
