package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cuidarbem/cuidarbem-api/repository"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a business rule failure the caller can act on.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidCredentials  = newError(KindUnauthorized, "invalid credentials")
	ErrUnauthorized        = newError(KindUnauthorized, "unauthorized")
	ErrNoCaregiverProfile  = newError(KindForbidden, "caregiver profile not found for this user")
	ErrNotOfferOwner       = newError(KindForbidden, "only the offer's caregiver can change it")
	ErrNotAppointmentParty = newError(KindForbidden, "you cannot cancel this appointment")
	ErrForbidden           = newError(KindForbidden, "forbidden")
	ErrOfferNotFound       = newError(KindNotFound, "service offer not found or inactive")
	ErrAppointmentNotFound = newError(KindNotFound, "appointment not found")
	ErrNotFound            = newError(KindNotFound, "resource not found")
	ErrOfferExpired        = newError(KindConflict, "this service offer is no longer available")
	ErrDuplicateBooking    = newError(KindConflict, "you already have an active booking for this offer")
	ErrAlreadyCancelled    = newError(KindConflict, "this appointment is already cancelled")
	ErrAppointmentClosed   = newError(KindConflict, "this appointment is completed and cannot be cancelled")
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string]string{}
	}
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = message
	}
}

// Err returns v when it holds at least one field, nil otherwise.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func fieldError(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// KindOf classifies err for transport mapping.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
