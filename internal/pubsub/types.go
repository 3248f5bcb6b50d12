package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRecalcPairings EventType = "recalc-pairings"
	EventNotifyResult   EventType = "notify-result"
)

// RecalcPairingsEvent asks the push consumer to rebuild one group's pairing
// aggregates.
type RecalcPairingsEvent struct {
	GroupID string `msgpack:"group_id"`
}

// NotifyResultEvent carries a freshly recorded game result to the notifier.
type NotifyResultEvent struct {
	GroupID string `msgpack:"group_id"`
	GameID  string `msgpack:"game_id"`
}
