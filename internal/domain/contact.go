package domain

import "fmt"

// ContactLines renders what p discloses to a confirmed counterpart: the
// preferred contact, the profile phone when shared, and the profile email
// only when nothing else is available.
func ContactLines(p *Profile, preferred Contact) []string {
	var lines []string
	if preferred.Complete() {
		lines = append(lines, fmt.Sprintf("%s: %s (preferred)", preferred.Mode, preferred.Value))
	}
	if p.SharePhone && p.Phone != "" && !(preferred.Complete() && preferred.Value == p.Phone) {
		lines = append(lines, fmt.Sprintf("Phone (from profile): %s", p.Phone))
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("Email: %s", p.Email))
	}
	return lines
}

// FallbackContact is the contact recorded for a party who gave none: the
// shared profile phone, otherwise the profile email. It is zero when the
// profile has neither.
func FallbackContact(p *Profile) Contact {
	if p.SharePhone && p.Phone != "" {
		return Contact{Mode: "Phone", Value: p.Phone}
	}
	if p.Email != "" {
		return Contact{Mode: "Email", Value: p.Email}
	}
	return Contact{}
}
