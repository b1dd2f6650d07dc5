// Package outreach builds personalized WhatsApp and email links from message
// templates. It only prepares links and activity records; nothing here sends
// anything.
package outreach

import (
	"net/url"
	"strings"

	"opsdesk/pkg/domain"
)

// Activity titles recorded against a lead when a message is prepared.
const (
	WhatsAppTitle = "WhatsApp Message Prepared"
	EmailTitle    = "Email Prepared"
)

const (
	emailSubject  = "Regarding our services"
	snippetLength = 50
	namePlacehold = "{{name}}"
)

// Personalize substitutes the lead's name for the first {{name}} occurrence in
// the template. Later occurrences are left as-is.
func Personalize(template, name string) string {
	return strings.Replace(template, namePlacehold, name, 1)
}

// WhatsAppLink builds a wa.me chat URL for a phone number, stripping every
// non-digit character first.
func WhatsAppLink(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "https://wa.me/" + digits.String() + "?text=" + url.QueryEscape(message)
}

// MailtoLink builds a mailto URL with the standard outreach subject.
func MailtoLink(email, message string) string {
	return "mailto:" + email +
		"?subject=" + url.QueryEscape(emailSubject) +
		"&body=" + url.QueryEscape(message)
}

// Snippet renders the activity snippet for a prepared message: the first 50
// characters, with an ellipsis when the message is longer.
func Snippet(message string) string {
	if len(message) > snippetLength {
		return "Prepared: " + message[:snippetLength] + "..."
	}
	return "Prepared: " + message
}

// Prepared is one lead's prepared message: the personalized text, the link to
// open, and the activity to record.
type Prepared struct {
	Lead     domain.Lead     `json:"lead"`
	Message  string          `json:"message"`
	Link     string          `json:"link"`
	Activity domain.Activity `json:"activity"`
}

// Result partitions an outreach batch into leads that could be prepared and
// leads skipped for missing contact details.
type Result struct {
	Prepared []Prepared    `json:"prepared"`
	Skipped  []domain.Lead `json:"skipped"`
}

// PrepareWhatsApp personalizes the template per lead and builds chat links.
// Leads without a phone number are skipped. The timestamp is recorded verbatim
// on each activity.
func PrepareWhatsApp(leads []domain.Lead, template, timestamp string) Result {
	var res Result
	for _, lead := range leads {
		if lead.Phone == "" {
			res.Skipped = append(res.Skipped, lead)
			continue
		}
		message := Personalize(template, lead.Name)
		res.Prepared = append(res.Prepared, Prepared{
			Lead:    lead,
			Message: message,
			Link:    WhatsAppLink(lead.Phone, message),
			Activity: domain.Activity{
				Type:      domain.ActivityWhatsApp,
				Title:     WhatsAppTitle,
				Snippet:   Snippet(message),
				Timestamp: timestamp,
			},
		})
	}
	return res
}

// PrepareEmail personalizes the template per lead and builds mailto links.
// Leads without an email address still get an activity recorded but no link,
// and are also reported as skipped.
func PrepareEmail(leads []domain.Lead, template, timestamp string) Result {
	var res Result
	for _, lead := range leads {
		message := Personalize(template, lead.Name)
		p := Prepared{
			Lead:    lead,
			Message: message,
			Activity: domain.Activity{
				Type:      domain.ActivityEmail,
				Title:     EmailTitle,
				Snippet:   Snippet(message),
				Timestamp: timestamp,
			},
		}
		if lead.Email == "" {
			res.Skipped = append(res.Skipped, lead)
		} else {
			p.Link = MailtoLink(lead.Email, message)
		}
		res.Prepared = append(res.Prepared, p)
	}
	return res
}
