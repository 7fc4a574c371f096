package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")

	ErrListingNotFound    = errors.New("listing not found")
	ErrInvalidListingKind = errors.New("invalid listing kind")
	ErrCannotReportOwn    = errors.New("cannot report your own listing")

	ErrMatchRequestNotFound  = errors.New("match request not found")
	ErrRateLimitExceeded     = errors.New("daily match request limit reached")
	ErrInvalidInitiatorType  = errors.New("initiator type must be \"request\" or \"offer\"")
	ErrInvalidTarget         = errors.New("no target listing supplied for this initiator type")
	ErrMissingContactInfo    = errors.New("contact mode and contact value are required")
	ErrTargetNotFound        = errors.New("target listing not found")
	ErrTargetInactive        = errors.New("target listing is no longer active")
	ErrSelfMatchForbidden    = errors.New("cannot send a match request to your own listing")
	ErrDuplicateMatchRequest = errors.New("match request already sent for this pair")
	ErrAlreadyResolved       = errors.New("match request is no longer pending")
	ErrNotAuthorized         = errors.New("not allowed to perform this action")
	ErrTargetDeactivated     = errors.New("a listing in this match request has been deactivated")
	ErrNotAccepted           = errors.New("only accepted match requests can be completed")
	ErrDataIntegrity         = errors.New("referenced record disappeared")

	// ErrStatusConflict is returned by conditional status updates when the
	// stored status differs from the expected one.
	ErrStatusConflict = errors.New("status precondition failed")
	// ErrIllegalTransition rejects a status update the lifecycle never allows.
	ErrIllegalTransition = errors.New("illegal status transition")
)

var ErrInvalidToken = errors.New("invalid token")
