package bookings

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cal.com trigger names.
const (
	TriggerPing        = "PING"
	TriggerCreated     = "BOOKING_CREATED"
	TriggerCancelled   = "BOOKING_CANCELLED"
	TriggerRescheduled = "BOOKING_RESCHEDULED"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Cal-Signature-256"

// WebhookEvent is the Cal.com webhook envelope.
type WebhookEvent struct {
	TriggerEvent string         `json:"triggerEvent"`
	CreatedAt    string         `json:"createdAt,omitempty"`
	Payload      WebhookPayload `json:"payload"`
}

// WebhookPayload holds the booking fields this service reads.
type WebhookPayload struct {
	UID       string                     `json:"uid"`
	StartTime string                     `json:"startTime,omitempty"`
	EndTime   string                     `json:"endTime,omitempty"`
	Attendees []Attendee                 `json:"attendees,omitempty"`
	Responses map[string]json.RawMessage `json:"responses,omitempty"`
	Metadata  map[string]any             `json:"metadata,omitempty"`
}

// Attendee is one booking participant.
type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AttendeeEmail finds the booker's address. Sources are tried in order:
// attendees[0].email, responses.email (plain or {"value": ...}),
// metadata.email, metadata.attendeeEmail. The result is trimmed and lower-cased.
func (p WebhookPayload) AttendeeEmail() string {
	if len(p.Attendees) > 0 {
		if e := normalizeEmail(p.Attendees[0].Email); e != "" {
			return e
		}
	}
	if raw, ok := p.Responses["email"]; ok {
		var plain string
		if err := json.Unmarshal(raw, &plain); err == nil {
			if e := normalizeEmail(plain); e != "" {
				return e
			}
		}
		var wrapped struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &wrapped); err == nil {
			if e := normalizeEmail(wrapped.Value); e != "" {
				return e
			}
		}
	}
	for _, key := range []string{"email", "attendeeEmail"} {
		if s, ok := p.Metadata[key].(string); ok {
			if e := normalizeEmail(s); e != "" {
				return e
			}
		}
	}
	return ""
}

// Times parses the optional RFC 3339 start and end times. Unparseable values are treated as absent.
func (p WebhookPayload) Times() (start, end *time.Time) {
	return parseTime(p.StartTime), parseTime(p.EndTime)
}

// VerifySignature checks header against the HMAC-SHA256 of body.
func VerifySignature(secret string, body []byte, header string) bool {
	header = strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	if header == "" {
		return false
	}
	got, err := hex.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the hex signature Cal.com would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
