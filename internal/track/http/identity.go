package http

import (
	"context"
	"errors"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
)

var errNotRegistered = errors.New("authenticated subject has no local profile")

// currentUser resolves the authenticated subject (injected by the authn
// middleware) to the local profile. Subjects that passed token verification
// but never called register land on errNotRegistered.
func currentUser(ctx context.Context, users *service.UserService) (domain.User, error) {
	subject := httpx.UserIDFromCtx(ctx)
	if subject == "" {
		return domain.User{}, errNotRegistered
	}

	u, err := users.GetBySubject(ctx, subject)
	if errors.Is(err, service.ErrUserNotFound) {
		return domain.User{}, errNotRegistered
	}
	return u, err
}
