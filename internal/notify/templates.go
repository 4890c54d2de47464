package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

const defaultBeeName = "B2Bee"

// LeadDetails is what the operations notification needs to know about a lead.
type LeadDetails struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Company   string
	Notes     string
	BeeName   string
	CreatedAt time.Time
}

// ReminderDetails describes the lead receiving a "book your demo" reminder.
type ReminderDetails struct {
	LeadID    string
	FirstName string
	LastName  string
	Email     string
	Company   string
	BeeName   string
}

// BookingDetails describes a confirmed demo booking.
type BookingDetails struct {
	BookingID string
	FirstName string
	LastName  string
	Email     string
	Company   string
	BeeName   string
	StartTime *time.Time
}

// TemplateConfig carries the site URLs embedded in customer-facing emails.
type TemplateConfig struct {
	BaseURL string
	CalLink string
}

func (c TemplateConfig) baseURL() string {
	if c.BaseURL == "" {
		return "https://b2bee.ai"
	}
	return strings.TrimRight(c.BaseURL, "/")
}

var leadNotificationTmpl = template.Must(template.New("lead").Parse(`<h2>New Lead Submission</h2>
<p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>
{{end}}{{if .BeeName}}<p><strong>Interested in:</strong> {{.BeeName}}</p>
{{end}}{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>
{{end}}<p><strong>Created:</strong> {{.Created}}</p>
`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; padding: 30px 0; border-bottom: 3px solid #f97316;">
      <img src="{{.BaseURL}}/logo.png" alt="B2Bee" style="max-width: 200px;" />
    </div>
    <div style="padding: 30px 0;">
      <h2>Hi {{.FirstName}},</h2>
      <p>Thanks for your interest in <strong>{{.BeeName}}</strong>! We noticed you haven't booked your demo yet.</p>
      <div style="background: #fef3c7; padding: 15px; border-radius: 8px; margin: 20px 0;">
        <strong>Why book a demo?</strong>
        <ul>
          <li>See {{.BeeName}} in action with real examples</li>
          <li>Get personalized recommendations for your business</li>
          <li>Ask questions and explore custom solutions</li>
          <li>No commitment required - just a friendly conversation</li>
        </ul>
      </div>
      <p>We've reserved a spot for you. Click below to choose your preferred time:</p>
      <div style="text-align: center;">
        <a href="{{.BookingURL}}" style="display: inline-block; background: #f97316; color: white; padding: 14px 30px; text-decoration: none; border-radius: 8px; font-weight: 600;">Book Your Free Demo</a>
      </div>
      <p>Best regards,<br><strong>The B2Bee Team</strong></p>
    </div>
    <div style="text-align: center; padding: 20px 0; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 14px;">
      <p>B2Bee - AI Automation for Small Business</p>
      <p><a href="{{.BaseURL}}" style="color: #f97316;">www.b2bee.ai</a></p>
    </div>
  </body>
</html>
`))

var bookingTmpl = template.Must(template.New("booking").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; padding: 30px 0; border-bottom: 3px solid #f97316;">
      <img src="{{.BaseURL}}/logo.png" alt="B2Bee" style="max-width: 200px;" />
    </div>
    <div style="padding: 30px 0;">
      <h2>Welcome, {{.FirstName}}!</h2>
      <p>We're thrilled to confirm your <strong>{{.BeeName}}</strong> demo!</p>
      <div style="background: #fef3c7; padding: 20px; border-radius: 8px; border-left: 4px solid #f97316;">
        <p><strong>Product:</strong> {{.BeeName}}</p>
        <p><strong>When:</strong> {{.When}}</p>
        <p><strong>Attendee:</strong> {{.FirstName}} {{.LastName}}</p>
        {{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
      </div>
      <p>See you soon,<br><strong>The B2Bee Team</strong></p>
      <p style="font-size: 12px; color: #6b7280;">Need to reschedule? You should have received a calendar invite with options to reschedule or cancel.</p>
    </div>
    <div style="text-align: center; padding: 20px 0; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 14px;">
      <p>B2Bee - AI Automation for Small Business</p>
      <p><a href="{{.BaseURL}}" style="color: #f97316;">www.b2bee.ai</a></p>
    </div>
  </body>
</html>
`))

// LeadNotificationEmail builds the internal "new lead" alert sent to operations.
func LeadNotificationEmail(to string, d LeadDetails) (EmailMessage, error) {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	data := struct {
		LeadDetails
		Created string
	}{d, created.UTC().Format(time.RFC1123)}

	html, err := render(leadNotificationTmpl, data)
	if err != nil {
		return EmailMessage{}, err
	}

	var body strings.Builder
	fmt.Fprintf(&body, "New lead: %s %s\nEmail: %s\n", d.FirstName, d.LastName, d.Email)
	if d.Company != "" {
		fmt.Fprintf(&body, "Company: %s\n", d.Company)
	}
	if d.BeeName != "" {
		fmt.Fprintf(&body, "Interested in: %s\n", d.BeeName)
	}
	if d.Notes != "" {
		fmt.Fprintf(&body, "Notes: %s\n", d.Notes)
	}
	fmt.Fprintf(&body, "Created: %s\n", data.Created)

	return EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("New Lead: %s %s", d.FirstName, d.LastName),
		Body:    body.String(),
		HTML:    html,
	}, nil
}

// ReminderEmail builds the "book your demo" nudge for a lead that has not booked.
func ReminderEmail(cfg TemplateConfig, d ReminderDetails) (EmailMessage, error) {
	beeName := d.BeeName
	if beeName == "" {
		beeName = defaultBeeName
	}
	bookingURL := BookingLink(cfg.CalLink, d)

	html, err := render(reminderTmpl, struct {
		ReminderDetails
		BeeName    string
		BaseURL    string
		BookingURL string
	}{d, beeName, cfg.baseURL(), bookingURL})
	if err != nil {
		return EmailMessage{}, err
	}

	body := fmt.Sprintf("Hi %s,\n\nThanks for your interest in %s! We noticed you haven't booked your demo yet.\n\nBook your free demo: %s\n\nBest regards,\nThe B2Bee Team\n",
		d.FirstName, beeName, bookingURL)

	return EmailMessage{
		To:      d.Email,
		ToName:  strings.TrimSpace(d.FirstName + " " + d.LastName),
		Subject: fmt.Sprintf("Don't miss out! Book your %s demo", beeName),
		Body:    body,
		HTML:    html,
	}, nil
}

// BookingConfirmationEmail builds the confirmation sent once a demo is booked.
func BookingConfirmationEmail(cfg TemplateConfig, d BookingDetails) (EmailMessage, error) {
	beeName := d.BeeName
	if beeName == "" {
		beeName = defaultBeeName
	}
	when := "TBD"
	if d.StartTime != nil && !d.StartTime.IsZero() {
		when = d.StartTime.UTC().Format("Monday, 2 January 2006 at 15:04 MST")
	}

	html, err := render(bookingTmpl, struct {
		BookingDetails
		BeeName string
		BaseURL string
		When    string
	}{d, beeName, cfg.baseURL(), when})
	if err != nil {
		return EmailMessage{}, err
	}

	body := fmt.Sprintf("Welcome, %s!\n\nYour %s demo is confirmed.\nWhen: %s\nAttendee: %s %s\n\nSee you soon,\nThe B2Bee Team\n",
		d.FirstName, beeName, when, d.FirstName, d.LastName)

	return EmailMessage{
		To:      d.Email,
		ToName:  strings.TrimSpace(d.FirstName + " " + d.LastName),
		Subject: fmt.Sprintf("Your %s demo is confirmed! 🎉", beeName),
		Body:    body,
		HTML:    html,
	}, nil
}

// BookingLink pre-fills the Cal.com booking page with the lead's details.
func BookingLink(calLink string, d ReminderDetails) string {
	if calLink == "" {
		calLink = "https://cal.com"
	}
	u, err := url.Parse(calLink)
	if err != nil {
		return calLink
	}
	q := u.Query()
	q.Set("name", strings.TrimSpace(d.FirstName+" "+d.LastName))
	q.Set("email", d.Email)
	if d.Company != "" {
		q.Set("notes", "Company: "+d.Company)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
