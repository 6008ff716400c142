package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"campusgpt-backend/apperr"
	"campusgpt-backend/clients"
	"campusgpt-backend/models"
	"campusgpt-backend/stores"
)

// ResponderClient is the external answering service, seen only through its
// request/response contract.
type ResponderClient interface {
	Ask(ctx context.Context, req clients.AskRequest) (string, error)
}

type QueryResult struct {
	QueryId string
	Answer  string
}

type HistoryPage struct {
	Queries []models.QueryRecord
	Total   int64
}

type QueryService struct {
	queries   stores.QueryLedger
	responder ResponderClient
	log       *slog.Logger
}

func NewQueryService(queries stores.QueryLedger, responder ResponderClient, log *slog.Logger) *QueryService {
	return &QueryService{queries: queries, responder: responder, log: log}
}

// Submit runs one query through its full lifecycle:
//
//  1. insert a pending record inside a transaction,
//  2. call the responder while the transaction is still open,
//  3. on success finalize the record and commit,
//  4. on failure roll back (discarding the pending insert) and record the
//     failure under the same id with a separate write on a fresh connection.
//
// Exactly one terminal write happens per query id; no path leaves a record
// pending.
func (s *QueryService) Submit(ctx context.Context, userId, text string) (*QueryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.InvalidArgument, "valid query text is required")
	}

	tx, err := s.queries.Begin(ctx)
	if err != nil {
		return nil, err
	}

	id, err := tx.InsertPending(ctx, userId, text)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback after failed insert failed", "error", rbErr)
		}
		return nil, err
	}

	answer, askErr := s.responder.Ask(ctx, clients.AskRequest{
		Query:   text,
		UserId:  userId,
		QueryId: id,
	})
	if askErr != nil {
		return nil, s.failQuery(ctx, tx, id, userId, text, askErr)
	}

	metadata, _ := json.Marshal(map[string]any{"processed_at": time.Now().UTC()})
	if err := tx.FinalizeSuccess(ctx, id, answer, metadata); err != nil {
		return nil, s.failQuery(ctx, tx, id, userId, text, err)
	}
	if err := tx.Commit(); err != nil {
		s.recordFailure(ctx, id, userId, text, err)
		return nil, err
	}

	return &QueryResult{QueryId: id, Answer: answer}, nil
}

// failQuery rolls the submission transaction back and records the failure
// out of band. The rollback discards the pending insert, so the failure
// write re-creates the record under the same id; its own failure is only
// logged (best effort). A failed rollback is surfaced as a server error in
// place of the original cause, but the failure write is still attempted.
func (s *QueryService) failQuery(ctx context.Context, tx stores.QueryTx, id, userId, text string, cause error) error {
	rbErr := tx.Rollback()
	if rbErr != nil {
		s.log.Error("rollback failed", "query_id", id, "error", rbErr)
	}

	s.recordFailure(ctx, id, userId, text, cause)

	if rbErr != nil {
		return apperr.Wrap(apperr.ServerError, "query processing failed", rbErr)
	}
	return cause
}

func (s *QueryService) recordFailure(ctx context.Context, id, userId, text string, cause error) {
	msg := cause.Error()
	if ae := apperr.As(cause); ae != nil {
		msg = ae.Message
	}
	if err := s.queries.RecordFailure(ctx, id, userId, text, msg); err != nil {
		s.log.Error("recording query failure failed", "query_id", id, "error", err)
	}
}

// History returns the user's past queries, newest first.
func (s *QueryService) History(ctx context.Context, userId string, limit, offset int) (*HistoryPage, error) {
	records, total, err := s.queries.ListForUser(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Queries: records, Total: total}, nil
}
