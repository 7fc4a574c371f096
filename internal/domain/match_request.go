package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a MatchRequest.
type Status int

const (
	StatusPending Status = iota + 1
	StatusAccepted
	StatusDeclined
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusAccepted:  "accepted",
	StatusDeclined:  "declined",
	StatusCompleted: "completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown match request status %q", s)
}

// MarshalText keeps JSON output on the fixed string set.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// CanTransitionTo reports whether next is a legal successor of s.
// pending -> accepted | declined, accepted -> completed. Nothing returns to pending.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusDeclined
	case StatusAccepted:
		return next == StatusCompleted
	default:
		return false
	}
}

// Side identifies a party's role in a MatchRequest.
type Side string

const (
	SideRequester Side = "requester"
	SideOfferer   Side = "offerer"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideRequester {
		return SideOfferer
	}
	return SideRequester
}

// InitiatorType tells which listing the caller started from.
// "request": the caller needs something and targets an offer.
// "offer": the caller has something and targets a request.
type InitiatorType string

const (
	InitiateFromRequest InitiatorType = "request"
	InitiateFromOffer   InitiatorType = "offer"
)

// Side returns the side the initiator occupies.
func (t InitiatorType) Side() Side {
	if t == InitiateFromOffer {
		return SideOfferer
	}
	return SideRequester
}

// Valid reports whether t is known.
func (t InitiatorType) Valid() bool {
	return t == InitiateFromRequest || t == InitiateFromOffer
}

// Contact is a disclosed way to reach a party.
type Contact struct {
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

// IsZero reports whether nothing has been disclosed.
func (c Contact) IsZero() bool {
	return c.Mode == "" && c.Value == ""
}

// Complete reports whether both mode and value are present.
func (c Contact) Complete() bool {
	return c.Mode != "" && c.Value != ""
}

// MatchRequest is a proposed pairing of one offer and one request.
type MatchRequest struct {
	ID          int64            `json:"id"`
	OfferID     *int64           `json:"offer_id,omitempty"`
	RequestID   *int64           `json:"request_id,omitempty"`
	RequesterID string           `json:"requester_id"`
	OffererID   string           `json:"offerer_id"`
	InitiatorID string           `json:"initiator_id"`
	Message     string           `json:"message,omitempty"`
	Status      Status           `json:"status"`
	Contacts    map[Side]Contact `json:"contacts"`
	Notified    bool             `json:"notified"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// SideOf returns the side profileID occupies, if any.
func (m *MatchRequest) SideOf(profileID string) (Side, bool) {
	switch profileID {
	case m.RequesterID:
		return SideRequester, true
	case m.OffererID:
		return SideOfferer, true
	}
	return "", false
}

// IsParty reports whether profileID is requester or offerer.
func (m *MatchRequest) IsParty(profileID string) bool {
	_, ok := m.SideOf(profileID)
	return ok
}

// ResponderID is the party that did not initiate.
func (m *MatchRequest) ResponderID() string {
	if m.InitiatorID == m.OffererID {
		return m.RequesterID
	}
	return m.OffererID
}

// ContactFor returns what side s has disclosed so far.
func (m *MatchRequest) ContactFor(s Side) Contact {
	if m.Contacts == nil {
		return Contact{}
	}
	return m.Contacts[s]
}

// PairKey identifies the (offer, request) combination regardless of direction.
type PairKey struct {
	OfferID   int64
	RequestID int64
}

// Pair returns the pair key; ok is false unless both listings are referenced.
func (m *MatchRequest) Pair() (PairKey, bool) {
	if m.OfferID == nil || m.RequestID == nil {
		return PairKey{}, false
	}
	return PairKey{OfferID: *m.OfferID, RequestID: *m.RequestID}, true
}

// ContactsDisclosed reports whether both parties may see each other's contact.
func (m *MatchRequest) ContactsDisclosed() bool {
	return m.Status == StatusAccepted || m.Status == StatusCompleted
}

// VisibleTo returns a copy of m with the counterpart's contact removed until
// the request has been accepted.
func (m *MatchRequest) VisibleTo(profileID string) *MatchRequest {
	c := *m
	c.Contacts = make(map[Side]Contact, len(m.Contacts))
	side, isParty := m.SideOf(profileID)
	for s, contact := range m.Contacts {
		if m.ContactsDisclosed() || (isParty && s == side) {
			c.Contacts[s] = contact
		}
	}
	return &c
}
