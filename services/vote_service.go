// File: services/vote_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"school-vote/logger"
	"school-vote/metrics"
	"school-vote/models"
	"school-vote/store"
)

// VoteState is where a voter's single voting attempt stands.
type VoteState int

const (
	StateUnknown VoteState = iota
	StateNotVoted
	StateAlreadyVoted
	StateSubmitting
	StateSubmitted
	StateSubmitFailed
)

func (s VoteState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateNotVoted:
		return "not_voted"
	case StateAlreadyVoted:
		return "already_voted"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return fmt.Sprintf("VoteState(%d)", int(s))
	}
}

// VoteService creates voting sessions against a vote store.
type VoteService struct {
	store   store.VoteStore
	metrics metrics.Publisher
	now     func() time.Time
}

// NewVoteService wires the store and metrics publisher. A nil publisher
// disables metrics.
func NewVoteService(st store.VoteStore, pub metrics.Publisher) *VoteService {
	if pub == nil {
		pub = metrics.NopPublisher{}
	}
	return &VoteService{store: st, metrics: pub, now: time.Now}
}

// Begin starts a voting attempt for voter in StateUnknown.
func (s *VoteService) Begin(voter models.Voter) *VoteSession {
	return &VoteSession{svc: s, voter: voter, state: StateUnknown}
}

// VoteSession walks one voter through
// Unknown -> NotVoted|AlreadyVoted -> Submitting -> Submitted|SubmitFailed.
// A failed submission may be retried from the same session.
type VoteSession struct {
	svc   *VoteService
	voter models.Voter

	mu    sync.Mutex
	state VoteState
}

func (vs *VoteSession) Voter() models.Voter { return vs.voter }

func (vs *VoteSession) State() VoteState {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.state
}

// CheckStatus queries the store for an existing vote by this email.
// On a read failure the session stays in StateUnknown.
func (vs *VoteSession) CheckStatus(ctx context.Context) (VoteState, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if err := vs.checkLocked(ctx); err != nil {
		return vs.state, err
	}
	return vs.state, nil
}

func (vs *VoteSession) checkLocked(ctx context.Context) error {
	existing, err := vs.svc.store.QueryByEmail(ctx, vs.voter.Email)
	if err != nil {
		logger.Error.Printf("VoteSession.CheckStatus: query for %s failed: %v", vs.voter.Email, err)
		return fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	if len(existing) > 0 {
		vs.state = StateAlreadyVoted
	} else {
		vs.state = StateNotVoted
	}
	logger.Debug.Printf("VoteSession.CheckStatus: %s is %s", vs.voter.Email, vs.state)
	return nil
}

// Submit records a vote for optionID.
//
// A session that already voted returns ErrAlreadyVoted without touching
// the store, whatever the option. An unknown option returns
// ErrInvalidOption. A store failure returns ErrStoreWrite and leaves the
// session in StateSubmitFailed, from which Submit may be called again.
// If another request for the same email wins the insert, the store's
// uniqueness check turns this into ErrAlreadyVoted.
func (vs *VoteSession) Submit(ctx context.Context, optionID string) error {
	publish, err := vs.submit(ctx, optionID)
	if publish != nil {
		publish()
	}
	return err
}

// submit runs the state machine under the session lock and returns the
// metric to publish once the lock is released.
func (vs *VoteSession) submit(ctx context.Context, optionID string) (func(), error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.state == StateUnknown {
		if err := vs.checkLocked(ctx); err != nil {
			return nil, err
		}
	}

	switch vs.state {
	case StateAlreadyVoted, StateSubmitted:
		logger.Info.Printf("VoteSession.Submit: %s already voted", vs.voter.Email)
		return nil, ErrAlreadyVoted
	}

	if !models.IsValidOption(optionID) {
		logger.Warn.Printf("VoteSession.Submit: rejected unknown option %q from %s", optionID, vs.voter.Email)
		return nil, ErrInvalidOption
	}

	vs.state = StateSubmitting
	rec := models.VoteRecord{
		Email:     vs.voter.Email,
		Name:      vs.voter.Name,
		Vote:      optionID,
		Timestamp: vs.svc.now().UTC(),
	}

	id, err := vs.svc.store.InsertVote(ctx, rec)
	switch {
	case errors.Is(err, store.ErrDuplicateVote):
		vs.state = StateAlreadyVoted
		logger.Warn.Printf("VoteSession.Submit: duplicate vote blocked by store for %s", vs.voter.Email)
		return vs.svc.metrics.DuplicateVote, ErrAlreadyVoted
	case err != nil:
		vs.state = StateSubmitFailed
		logger.Error.Printf("VoteSession.Submit: insert for %s failed: %v", vs.voter.Email, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	vs.state = StateSubmitted
	logger.Info.Printf("VoteSession.Submit: vote %s recorded for %s", id, vs.voter.Email)
	return func() { vs.svc.metrics.VoteCast(optionID) }, nil
}
