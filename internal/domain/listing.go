package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// ListingKind distinguishes the two parallel listing tables.
type ListingKind string

const (
	KindOffer   ListingKind = "offer"
	KindRequest ListingKind = "request"
)

// Valid reports whether k is a known kind.
func (k ListingKind) Valid() bool {
	return k == KindOffer || k == KindRequest
}

// Opposite returns the kind a listing of kind k is matched against.
func (k ListingKind) Opposite() ListingKind {
	if k == KindOffer {
		return KindRequest
	}
	return KindOffer
}

// ParseListingKind converts a wire value into a ListingKind.
func ParseListingKind(s string) (ListingKind, error) {
	k := ListingKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidListingKind, s)
	}
	return k, nil
}

// Listing is an Offer or a Request. Both share the same shape.
type Listing struct {
	ID            int64       `json:"id" db:"id"`
	Kind          ListingKind `json:"kind" db:"-"`
	ProfileID     string      `json:"profile_id" db:"profile_id"`
	Title         string      `json:"title" db:"title"`
	Description   string      `json:"description" db:"description"`
	Category      string      `json:"category" db:"category"`
	Subcategory   string      `json:"subcategory" db:"subcategory"`
	ImageFileName *string     `json:"image_file_name,omitempty" db:"image_file_name"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	Reports       Reports     `json:"reports,omitempty" db:"reports"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

// Report is a moderation flag raised against a listing.
type Report struct {
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reports is stored as a JSONB array next to the listing.
type Reports []Report

// Value implements driver.Valuer.
func (r Reports) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *Reports) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("reports: unsupported source type %T", src)
	}
	if len(data) == 0 {
		*r = nil
		return nil
	}
	return json.Unmarshal(data, r)
}

// OwnedImageName places a client-supplied image name under the owner's
// directory. Only the base name of the input is kept.
func OwnedImageName(ownerID, name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return ownerID + "/" + base
}

// ImageOwnedBy reports whether name lives in ownerID's image directory.
func ImageOwnedBy(name, ownerID string) bool {
	return ownerID != "" && OwnedImageName(ownerID, name) == name
}
