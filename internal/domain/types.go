package domain

import "time"

type UserID string
type MessageID string
type MoodEntryID string

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Channel identifies where a conversation turn entered the system.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

type Timestamp = time.Time
