// Package store defines the vote store boundary shared by the memory,
// sqlite and dynamo implementations.
// File: store/store.go
package store

import (
	"context"
	"errors"

	"school-vote/models"
)

// ErrDuplicateVote is returned by InsertVote when a record for the same
// email already exists. Every implementation enforces this natively.
var ErrDuplicateVote = errors.New("a vote for this email already exists")

// VoteStore persists vote records.
type VoteStore interface {
	// InsertVote stores rec and returns its assigned id.
	InsertVote(ctx context.Context, rec models.VoteRecord) (string, error)
	// QueryByEmail returns every record whose email equals email.
	QueryByEmail(ctx context.Context, email string) ([]models.VoteRecord, error)
	// ListAll returns every stored record, in no particular order.
	ListAll(ctx context.Context) ([]models.VoteRecord, error)
	// DeleteAll removes every record and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)
	Close() error
}

// Valid reports whether rec carries the fields every reader depends on.
// Records failing this check are quarantined at the read boundary.
func Valid(rec models.VoteRecord) bool {
	return rec.Email != "" && rec.Vote != ""
}
