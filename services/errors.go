// Package services holds the election logic: identity resolution, vote
// submission, tally, export and the results gate.
// File: services/errors.go
package services

import "errors"

// error taxonomy surfaced to the user as notices
var (
	ErrInvalidEmailDomain = errors.New("email is not an institutional address")
	ErrInvalidOption      = errors.New("unknown ballot option")
	ErrAlreadyVoted       = errors.New("this email has already voted")
	ErrStoreWrite         = errors.New("vote store write failed")
	ErrStoreRead          = errors.New("vote store read failed")
	ErrInvalidCredentials = errors.New("invalid results password")
	ErrAdminRequired      = errors.New("results access requires authentication")
	ErrNoVotes            = errors.New("there are no votes to export")
)
