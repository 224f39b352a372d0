package contact

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 200
	maxEmailLen   = 320
	maxPhoneLen   = 50
	maxMessageLen = 5000
)

// ValidationError carries a message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid contact submission"
}

// Validate trims req in place and checks every field.
func Validate(req *Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)

	fields := map[string]string{}
	switch n := utf8.RuneCountInString(req.Name); {
	case n == 0:
		fields["name"] = "name is required"
	case n > maxNameLen:
		fields["name"] = "name is too long"
	case hasLineBreak(req.Name):
		fields["name"] = "name contains line breaks"
	}

	if req.Email == "" {
		fields["email"] = "email is required"
	} else if !validEmail(req.Email) {
		fields["email"] = "email is invalid"
	}

	switch {
	case utf8.RuneCountInString(req.Phone) > maxPhoneLen:
		fields["phone"] = "phone is too long"
	case hasLineBreak(req.Phone):
		fields["phone"] = "phone contains line breaks"
	}

	switch n := utf8.RuneCountInString(req.Message); {
	case n == 0:
		fields["message"] = "message is required"
	case n > maxMessageLen:
		fields["message"] = "message is too long"
	}

	if !req.Consent {
		fields["consent"] = "consent is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validEmail accepts a bare address only, no display name.
func validEmail(value string) bool {
	if len(value) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at+1:], ".")
}

// Name and phone end up in mail headers.
func hasLineBreak(value string) bool {
	return strings.ContainsAny(value, "\r\n")
}
