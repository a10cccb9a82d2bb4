package outbox

// DefaultTopic receives events whose type has no dedicated route.
const DefaultTopic = "gamification-events"

// topicRoutes maps event types to destination topics. Fixed at build time;
// records snapshot the resolved topic so later changes never remap
// already-written events.
var topicRoutes = map[string]string{
	EventTypeBadgeEarned:        "badge-events",
	EventTypeLevelUp:            "level-up-events",
	EventTypeQuestCompleted:     "quest-events",
	EventTypeLeaderboardUpdated: "leaderboard-events",
	EventTypeStreakUpdated:      DefaultTopic,
}

// ResolveTopic returns the destination topic for an event type, falling
// back to DefaultTopic for unrecognized types.
func ResolveTopic(eventType string) string {
	if topic, ok := topicRoutes[eventType]; ok {
		return topic
	}
	return DefaultTopic
}
