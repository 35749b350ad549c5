// File: services/results_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"school-vote/logger"
	"school-vote/metrics"
	"school-vote/models"
	"school-vote/store"
)

// Results is what the results screen shows.
type Results struct {
	Records []models.VoteRecord // sorted by voter name
	Tally   models.Tally
}

// ResultsService reads, exports and resets votes on behalf of a holder
// of an AdminToken.
type ResultsService struct {
	store   store.VoteStore
	gate    *AdminGate
	metrics metrics.Publisher
	now     func() time.Time
}

func NewResultsService(st store.VoteStore, gate *AdminGate, pub metrics.Publisher) *ResultsService {
	if pub == nil {
		pub = metrics.NopPublisher{}
	}
	return &ResultsService{store: st, gate: gate, metrics: pub, now: time.Now}
}

func (s *ResultsService) authorize(tok AdminToken) error {
	if _, ok := s.gate.Verify(tok.ID); !ok {
		return ErrAdminRequired
	}
	return nil
}

// Load fetches every vote and tallies it.
func (s *ResultsService) Load(ctx context.Context, tok AdminToken) (Results, error) {
	if err := s.authorize(tok); err != nil {
		return Results{}, err
	}
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		logger.Error.Printf("ResultsService.Load: list votes failed: %v", err)
		return Results{}, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return Results{Records: SortByName(recs), Tally: ComputeTally(recs)}, nil
}

// ExportCSV returns the suggested filename and the CSV body, rows sorted
// by voter name. ErrNoVotes when there is nothing to export.
func (s *ResultsService) ExportCSV(ctx context.Context, tok AdminToken) (string, []byte, error) {
	res, err := s.Load(ctx, tok)
	if err != nil {
		return "", nil, err
	}
	if len(res.Records) == 0 {
		return "", nil, ErrNoVotes
	}
	return CSVFilename(s.now()), ToDelimitedText(res.Records), nil
}

// ExportReport returns the printable HTML report. ErrNoVotes when there
// is nothing to export.
func (s *ResultsService) ExportReport(ctx context.Context, tok AdminToken) ([]byte, error) {
	res, err := s.Load(ctx, tok)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, ErrNoVotes
	}
	return ToPrintableDocument(res.Records, res.Tally, s.now())
}

// ResetAllVotes deletes every vote and revokes tok. Irreversible; the
// caller must have asked for confirmation. The token stays valid when the
// delete fails, so the admin can retry.
func (s *ResultsService) ResetAllVotes(ctx context.Context, tok AdminToken) (int, error) {
	if err := s.authorize(tok); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		logger.Error.Printf("ResultsService.ResetAllVotes: delete failed after %d: %v", n, err)
		return n, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	s.gate.Revoke(tok.ID)
	s.metrics.VotesReset(n)
	logger.Info.Printf("ResultsService.ResetAllVotes: removed %d votes", n)
	return n, nil
}
