package store

import "time"

// ContactSubmission is one message sent through the site's contact form.
type ContactSubmission struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Message   string
	Locale    string
	IPHash    string
	UserAgent string
	Notified  bool
	CreatedAt time.Time
}
