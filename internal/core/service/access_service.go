package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

var (
	publicPaths = map[string]struct{}{
		"/":            {},
		"/register":    {},
		"/favicon.ico": {},
		"/health":      {},
		"/metrics":     {},
	}
	publicPrefixes = []string{"/api/", "/static/", "/health/", "/swagger/"}
)

type accessService struct {
	repo ports.UserRepository
}

// NewAccessService returns an AccessGuard backed by repo.
func NewAccessService(repo ports.UserRepository) ports.AccessGuard {
	return &accessService{repo: repo}
}

func (s *accessService) IsPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (s *accessService) Authorize(ctx context.Context, userID, slug string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if user.ID != userID {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
