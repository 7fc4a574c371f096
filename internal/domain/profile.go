package domain

import "time"

// Profile is a marketplace member. ID is issued by the external identity provider.
type Profile struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	PostalCode  string    `json:"postal_code" db:"postal_code"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	Email       string    `json:"email,omitempty" db:"email"`
	SharePhone  bool      `json:"share_phone" db:"share_phone"`
	Karma       int       `json:"karma" db:"karma"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// InitialKarma is granted at registration.
const InitialKarma = 1

// ProfileUpdate carries the self-editable fields. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	PostalCode  *string
	Phone       *string
	Email       *string
	SharePhone  *bool
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.PostalCode == nil && u.Phone == nil &&
		u.Email == nil && u.SharePhone == nil
}

// Apply copies the non-nil fields onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.PostalCode != nil {
		p.PostalCode = *u.PostalCode
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.SharePhone != nil {
		p.SharePhone = *u.SharePhone
	}
}
