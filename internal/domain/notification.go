package domain

import "time"

// ChannelType enumerates supported notification channels.
type ChannelType string

const (
	ChannelEmail   ChannelType = "EMAIL"
	ChannelLine    ChannelType = "LINE"
	ChannelDiscord ChannelType = "DISCORD"
)

// Valid reports whether the channel type is known.
func (t ChannelType) Valid() bool {
	return t == ChannelEmail || t == ChannelLine || t == ChannelDiscord
}

// NotificationChannel is an admin-configured destination for ticket events.
// Target is an address, token or webhook URL depending on Type.
type NotificationChannel struct {
	ID        string
	Name      string
	Type      ChannelType
	Target    string
	Events    []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscribes reports whether the channel wants the given event type.
func (c NotificationChannel) Subscribes(eventType string) bool {
	for _, e := range c.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
