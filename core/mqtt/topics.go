// Package mqtt defines the topic layout used to fan collision alerts and
// fleet status out to MQTT subscribers.
package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "mineguard"

// Topics lists the topics the alert publisher writes to.
type Topics struct {
	// ActiveAlerts carries the full active alert set, retained.
	ActiveAlerts string
	// NewAlerts carries each alert the first time it becomes active.
	NewAlerts string
	// Status carries the status projection after every batch, retained.
	Status string
	// Producer carries the producer connected flag, retained.
	Producer string
	// Online is "online" while the service is connected and "offline"
	// through the broker's last will otherwise.
	Online string
}

// NewTopics derives the topic layout from prefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{
		ActiveAlerts: prefix + "/alerts/active",
		NewAlerts:    prefix + "/alerts/new",
		Status:       prefix + "/status",
		Producer:     prefix + "/producer",
		Online:       prefix + "/online",
	}
}
