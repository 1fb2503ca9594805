// Package services defines the business logic for the public loan catalogue,
// the blog, the newsletter, nearby-branch lookup, the sitemap and the admin
// back-office. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Catalogue errors.
var (
	// ErrLoanNotFound indicates the loan does not exist or is inactive.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrBankNotFound indicates the bank does not exist (or is inactive for
	// public pages).
	ErrBankNotFound = errors.New("bank not found")

	// ErrLoanTypeNotFound indicates the loan type does not exist or is inactive.
	ErrLoanTypeNotFound = errors.New("loan type not found")

	// ErrPostNotFound indicates the blog post does not exist or is unpublished.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidCoordinates is returned when a nearby-branch lookup is given a
	// latitude or longitude outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrBranchUpstream is returned when the map server answers with a
	// non-success status.
	ErrBranchUpstream = errors.New("map server returned an error")

	// ErrBranchLookup wraps any other failure while searching branches.
	ErrBranchLookup = errors.New("branch lookup failed")
)

// Newsletter errors.
var (
	// ErrInvalidEmail is returned for an empty address or one without '@'.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrSubscriberNotFound indicates the subscriber row does not exist.
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// Admin errors.
var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")

	// ErrPasswordTooShort is returned when the new password has fewer than
	// MinPasswordLen characters.
	ErrPasswordTooShort = errors.New("new password too short")

	// ErrWrongPassword is returned when the current password does not verify.
	ErrWrongPassword = errors.New("current password is wrong")

	// ErrAdminNotFound indicates the signed-in admin no longer exists.
	ErrAdminNotFound = errors.New("admin not found")
)

// Content management errors.
var (
	// ErrContentNotFound indicates the bank, loan type, loan or post being
	// edited does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrSlugTaken is returned when another row of the same kind already uses
	// the slug.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrInvalidContent is wrapped by every ValidationError.
	ErrInvalidContent = errors.New("invalid content")
)

// ValidationError reports the first field of a content form that failed
// validation, with a message fit for the admin.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return "invalid " + e.Field + ": " + e.Message }

// Unwrap lets callers match ErrInvalidContent.
func (e *ValidationError) Unwrap() error { return ErrInvalidContent }
