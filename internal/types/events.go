// Package types provides type definitions for webhook payloads and trigger
// requests used throughout the recruit-pipeline system.
package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CallEventTerminal is the message type that marks a phone call as finished.
// Every other message type is an interim status ping and is acknowledged
// without processing.
const CallEventTerminal = "end-of-call-report"

// ConversationEventTerminal is the status that marks a video conversation as
// finished.
const ConversationEventTerminal = "ended"

// RowNumber is a 1-based row index into the record sheet. The calling
// provider echoes call metadata back as strings, while trigger requests carry
// it as a number, so it unmarshals from either form. Zero means "not set".
type RowNumber int

// UnmarshalJSON accepts both `12` and `"12"`.
func (r *RowNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*r = 0
		return nil // tolerate junk; an unset row is skipped, not fatal
	}
	*r = RowNumber(n)
	return nil
}

// MarshalJSON emits the numeric form.
func (r RowNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

// Int returns the row as a plain int.
func (r RowNumber) Int() int { return int(r) }

// CallMetadata is the metadata attached to an outbound call at trigger time
// and echoed back in the end-of-call report.
type CallMetadata struct {
	CandidateName string    `json:"candidateName"`
	RowNumber     RowNumber `json:"rowNumber"`
	Stage         string    `json:"stage,omitempty"`
}

// CallDetails carries the call object embedded in a provider message.
type CallDetails struct {
	ID       string       `json:"id,omitempty"`
	Metadata CallMetadata `json:"metadata"`
}

// CallMessage is the message envelope of a call callback.
type CallMessage struct {
	Type       string      `json:"type"`
	Transcript string      `json:"transcript,omitempty"`
	Call       CallDetails `json:"call"`
}

// CallEvent is an inbound callback from the voice provider. Only events with
// Message.Type == CallEventTerminal are processed.
type CallEvent struct {
	Message CallMessage `json:"message"`
}

// Terminal reports whether this event marks the end of a call.
func (e *CallEvent) Terminal() bool {
	return e.Message.Type == CallEventTerminal
}

// ConversationEvent is an inbound callback from the video provider. The
// payload carries no row identifier; the conversation ID must be correlated
// back to a sheet row.
type ConversationEvent struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Transcript     string `json:"transcript,omitempty"`
	RecordingURL   string `json:"recording_url,omitempty"`
}

// Terminal reports whether the conversation has fully concluded.
func (e *ConversationEvent) Terminal() bool {
	return e.Status == ConversationEventTerminal
}
