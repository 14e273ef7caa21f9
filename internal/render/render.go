// Package render turns a template id and a contact into outbound message text.
package render

import (
	"fmt"
	"strings"
	"time"

	"nurturing_engine/internal/domain/contact"
)

// Placeholders used when the contact record is incomplete.
const (
	DefaultName     = "Customer"
	DefaultInterest = "your property of interest"
)

// Template ids understood by Render. Any other id falls back to the generic message.
const (
	WelcomeHotLead     = "welcome_hot_lead"
	WelcomeNewLead     = "welcome_new_lead"
	WeeklyMarketUpdate = "weekly_market_update"
	Reactivation       = "reactivation"
	FollowUpReminder   = "follow_up_reminder"
	SiteVisitReminder  = "site_visit_reminder"
	PriceDropAlert     = "price_drop_alert"
	NurturingCheckIn   = "nurturing_check_in"
)

type vars struct {
	Name     string
	Interest string
	Days     int
}

var catalog = map[string]func(v vars) string{
	WelcomeHotLead: func(v vars) string {
		return fmt.Sprintf("Hi %s, thank you for your enquiry about %s! One of our property advisors will call you shortly to help you take the next step.", v.Name, v.Interest)
	},
	WelcomeNewLead: func(v vars) string {
		return fmt.Sprintf("Hi %s, welcome! We've received your interest in %s. Reply here anytime with questions and we'll share details, floor plans and pricing.", v.Name, v.Interest)
	},
	WeeklyMarketUpdate: func(v vars) string {
		return fmt.Sprintf("Hi %s, here's your weekly update: new listings and price movements near %s are ready. Would you like us to send the latest options?", v.Name, v.Interest)
	},
	Reactivation: func(v vars) string {
		return fmt.Sprintf("Hi %s, it's been %d days since we last spoke about %s. The market has moved since then. Are you still looking? We'd be glad to help.", v.Name, v.Days, v.Interest)
	},
	FollowUpReminder: func(v vars) string {
		return fmt.Sprintf("Hi %s, just following up on %s. It has been %d days since our last conversation. Is there anything we can help you with?", v.Name, v.Interest, v.Days)
	},
	SiteVisitReminder: func(v vars) string {
		return fmt.Sprintf("Hi %s, this is a reminder about your upcoming site visit to %s. Reply to reschedule if the timing no longer works.", v.Name, v.Interest)
	},
	PriceDropAlert: func(v vars) string {
		return fmt.Sprintf("Hi %s, good news! The price of %s has changed. Reply to get the updated quote before the offer closes.", v.Name, v.Interest)
	},
	NurturingCheckIn: func(v vars) string {
		return fmt.Sprintf("Hi %s, checking in on your search around %s. Would a quick call this week help?", v.Name, v.Interest)
	},
}

// Render returns the message body for templateID. It never fails: unknown ids use a generic
// message and missing attributes degrade to neutral placeholders.
func Render(templateID string, c *contact.Contact, now time.Time) string {
	v := varsFor(c, now)
	if fn, ok := catalog[templateID]; ok {
		return fn(v)
	}
	return generic(v)
}

// Known reports whether templateID has a dedicated template.
func Known(templateID string) bool {
	_, ok := catalog[templateID]
	return ok
}

func generic(v vars) string {
	return fmt.Sprintf("Hi %s, we have an update regarding %s. Reply to this message and our advisor will get back to you.", v.Name, v.Interest)
}

func varsFor(c *contact.Contact, now time.Time) vars {
	v := vars{Name: DefaultName, Interest: DefaultInterest}
	if c == nil {
		return v
	}
	if name := strings.TrimSpace(c.Name); name != "" {
		v.Name = name
	}
	if interest := strings.TrimSpace(c.InterestPropertyName); interest != "" {
		v.Interest = interest
	}
	v.Days = DaysSince(c.UpdatedAt, now)
	return v
}

// DaysSince is floor((now - t) / 24h), never negative. A zero t yields 0.
func DaysSince(t, now time.Time) int {
	if t.IsZero() || now.Before(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}
