package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linkstash/linkstash-back/internal/auth"
	"github.com/linkstash/linkstash-back/internal/db"
)

type ProfileStore interface {
	FindUserByID(ctx context.Context, id uint64) (*db.User, error)
	UpdateUser(ctx context.Context, id uint64, fields map[string]interface{}) (*db.User, error)
}

type Users struct {
	store  ProfileStore
	logger *zap.SugaredLogger
}

func NewUsers(store ProfileStore, logger *zap.SugaredLogger) *Users {
	return &Users{
		store:  store,
		logger: logger,
	}
}

func (s *Users) Get(ctx context.Context, id uint64) (*db.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return user, nil
}

func (s *Users) Update(ctx context.Context, id uint64, email, firstName, lastName *string) (*db.User, error) {
	fields := map[string]interface{}{}
	if email != nil {
		fields["email"] = *email
	}
	if firstName != nil {
		fields["first_name"] = *firstName
	}
	if lastName != nil {
		fields["last_name"] = *lastName
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	user, err := s.store.UpdateUser(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateKey):
			return nil, auth.ErrDuplicateEmail
		case errors.Is(err, db.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update user")
	}

	return user, nil
}
