package leads

import (
	"strings"
	"time"
)

// Lead represents a normalized form submission. It is built once per accepted
// request and never mutated; the spreadsheet row is the durable copy.
type Lead struct {
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	State       string    `json:"state"`
	District    string    `json:"district"`
	SubmittedAt time.Time `json:"timestamp"`
}

// FromSubmission builds a Lead from raw form fields. It never fails: optional
// fields default to empty strings and required-field checks are left to
// Validate.
func FromSubmission(fields map[string]string) *Lead {
	return &Lead{
		FullName:    strings.TrimSpace(fields["fullName"]),
		Email:       strings.ToLower(strings.TrimSpace(fields["email"])),
		Phone:       sanitizePhone(fields["phone"]),
		State:       properCase(fields["state"]),
		District:    properCase(fields["district"]),
		SubmittedAt: time.Now(),
	}
}

// Validate checks the required fields after normalization
func (l *Lead) Validate() error {
	if l.FullName == "" || l.Email == "" {
		return ErrMissingRequired
	}
	return nil
}

// SheetsRow returns the flat ordered row appended to the spreadsheet.
func (l *Lead) SheetsRow() []string {
	return []string{
		l.SubmittedAt.Format("2006-01-02 15:04:05"),
		l.FullName,
		l.Email,
		l.Phone,
		l.State,
		l.District,
	}
}

// properCase replaces hyphens with spaces and capitalizes each word, so a
// form value like "new-york" becomes "New York".
func properCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	words := strings.Fields(strings.ReplaceAll(value, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// sanitizePhone keeps digits and the punctuation +-() and spaces.
func sanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-' || r == '(' || r == ')' || r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}
