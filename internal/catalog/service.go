package catalog

import (
	"context"
	"time"

	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

// Service exposes read-only catalog lookups.
type Service interface {
	List(ctx context.Context) ([]PackageDTO, error)
	Get(ctx context.Context, id int64) (*PackageDTO, error)
}

type service struct {
	repo    Repository
	timeout time.Duration
}

// NewService wires a catalog service. timeout bounds each query; zero disables it.
func NewService(repo Repository, timeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	return &service{repo: repo, timeout: timeout}, nil
}

func (s *service) List(ctx context.Context) ([]PackageDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pkgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list packages")
	}
	out := make([]PackageDTO, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, toDTO(p))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*PackageDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load package")
	}
	if pkg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}
	dto := toDTO(*pkg)
	return &dto, nil
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
