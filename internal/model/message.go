package model

import "time"

// MessageSource tags where a piece of notification text came from.
type MessageSource string

// Message source constants.
const (
	SourceSMS          MessageSource = "sms"
	SourceClipboard    MessageSource = "clipboard"
	SourceManual       MessageSource = "manual"
	SourceNotification MessageSource = "notification"
)

// RawMessage is an unstructured notification as received.
type RawMessage struct {
	ReceivedAt time.Time
	Text       string
	Source     MessageSource
	Sender     string // SMS sender header, e.g. "VM-HDFCBK"; may be empty
}
