package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

type latestReader interface {
	LatestForUser(ctx context.Context, userID uuid.UUID) (*MembershipRow, error)
}

type Service struct {
	repo    latestReader
	timeout time.Duration
}

func NewService(repo latestReader, timeout time.Duration) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "memberships repository required")
	}
	return &Service{repo: repo, timeout: timeout}, nil
}

// Latest returns the user's most recent subscription with its package.
func (s *Service) Latest(ctx context.Context, userID uuid.UUID) (*MembershipDetail, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	row, err := s.repo.LatestForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load membership")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Subscription not found")
	}
	return toDetail(row), nil
}
