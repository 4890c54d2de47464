package notify

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadNotificationEmail(t *testing.T) {
	msg, err := LeadNotificationEmail("ops@b2bee.ai", LeadDetails{
		FirstName: "Jo",
		LastName:  "Lee",
		Email:     "jo@x.com",
		Company:   "Acme <Ltd>",
		BeeName:   "Sales Bee",
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@b2bee.ai", msg.To)
	assert.Equal(t, "New Lead: Jo Lee", msg.Subject)
	assert.Contains(t, msg.HTML, "<strong>Interested in:</strong> Sales Bee")
	assert.Contains(t, msg.HTML, "Acme &lt;Ltd&gt;")
	assert.NotContains(t, msg.HTML, "Notes:")
	assert.Contains(t, msg.Body, "Company: Acme <Ltd>")
}

func TestReminderEmailDefaultsBeeName(t *testing.T) {
	msg, err := ReminderEmail(TemplateConfig{CalLink: "https://cal.com/b2bee/demo"}, ReminderDetails{
		FirstName: "Jo",
		LastName:  "Lee",
		Email:     "jo@x.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Don't miss out! Book your B2Bee demo", msg.Subject)
	assert.Equal(t, "jo@x.com", msg.To)
	assert.Contains(t, msg.HTML, "https://b2bee.ai/logo.png")
	assert.Contains(t, msg.Body, "https://cal.com/b2bee/demo?")
}

func TestReminderEmailUsesBeeName(t *testing.T) {
	msg, err := ReminderEmail(TemplateConfig{BaseURL: "https://example.com/"}, ReminderDetails{FirstName: "Jo", Email: "jo@x.com", BeeName: "Social Bee"})
	require.NoError(t, err)
	assert.Equal(t, "Don't miss out! Book your Social Bee demo", msg.Subject)
	assert.Contains(t, msg.HTML, "https://example.com/logo.png")
}

func TestBookingLinkPrefill(t *testing.T) {
	link := BookingLink("https://cal.com/b2bee", ReminderDetails{FirstName: "Jo", LastName: "Lee", Email: "jo@x.com", Company: "Acme"})
	u, err := url.Parse(link)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "Jo Lee", q.Get("name"))
	assert.Equal(t, "jo@x.com", q.Get("email"))
	assert.Equal(t, "Company: Acme", q.Get("notes"))

	noCompany := BookingLink("", ReminderDetails{FirstName: "Jo", Email: "jo@x.com"})
	assert.True(t, strings.HasPrefix(noCompany, "https://cal.com?"))
	assert.NotContains(t, noCompany, "notes=")
}

func TestBookingConfirmationEmail(t *testing.T) {
	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	msg, err := BookingConfirmationEmail(TemplateConfig{}, BookingDetails{FirstName: "Jo", LastName: "Lee", Email: "jo@x.com", BeeName: "Sales Bee", StartTime: &start})
	require.NoError(t, err)

	assert.Equal(t, "Your Sales Bee demo is confirmed! 🎉", msg.Subject)
	assert.Contains(t, msg.HTML, "Monday, 2 June 2025 at 14:00 UTC")

	msg, err = BookingConfirmationEmail(TemplateConfig{}, BookingDetails{FirstName: "Jo", Email: "jo@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "Your B2Bee demo is confirmed! 🎉", msg.Subject)
	assert.Contains(t, msg.Body, "When: TBD")
}
