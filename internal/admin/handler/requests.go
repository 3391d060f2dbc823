package handler

import (
	"strings"
	"time"

	dErrors "northstar/pkg/domain-errors"
)

// BlacklistRequest is the HTTP request body for POST /admin/domains/{domain}/blacklist.
type BlacklistRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// Validate validates and normalizes the request.
func (r *BlacklistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}

	r.Actor = strings.TrimSpace(r.Actor)
	if r.Actor == "" {
		return dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	return nil
}

// NoFundsRequest is the HTTP request body for POST /admin/domains/{domain}/no-funds.
type NoFundsRequest struct {
	Year int `json:"year"`
}

// Validate validates the request, defaulting the year to the current one.
func (r *NoFundsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	if r.Year == 0 {
		r.Year = time.Now().Year()
	}
	if r.Year < 2000 || r.Year > 2100 {
		return dErrors.Newf(dErrors.CodeValidation, "implausible year %d", r.Year)
	}
	return nil
}

// NotesRequest is the HTTP request body for PUT /admin/domains/{domain}/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// Validate validates the request. Empty notes clear the annotation.
func (r *NotesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	if len(r.Notes) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "notes must be at most 2000 characters")
	}
	return nil
}
