package services

import (
	"context"
	"time"

	"campusgpt-backend/models"
	"campusgpt-backend/stores"
)

// Profile is the identity record plus counters derived from the query
// ledger.
type Profile struct {
	User          *models.User
	QueryCount    int64
	LastQueryTime *time.Time
}

type UserService struct {
	users   stores.CredentialStore
	queries stores.QueryLedger
}

func NewUserService(users stores.CredentialStore, queries stores.QueryLedger) *UserService {
	return &UserService{users: users, queries: queries}
}

func (s *UserService) Profile(ctx context.Context, userId string) (*Profile, error) {
	user, err := s.users.FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	count, last, err := s.queries.StatsForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, QueryCount: count, LastQueryTime: last}, nil
}
