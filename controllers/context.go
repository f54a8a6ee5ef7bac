package controllers

import (
	"context"

	"github.com/dcode-github/dealdirect/backend/models"
)

type ContextKey string

const (
	AccountKey = ContextKey("account")
	UserKey    = ContextKey("user")
)

func WithAccount(ctx context.Context, a *models.Admin) context.Context {
	return context.WithValue(ctx, AccountKey, a)
}

// AccountFromContext returns the authenticated account set by the auth
// middleware.
func AccountFromContext(ctx context.Context) (*models.Admin, bool) {
	a, ok := ctx.Value(AccountKey).(*models.Admin)
	return a, ok && a != nil
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok && u != nil
}

// creatorID names whoever is submitting a listing: an admin panel account or
// a client-site user.
func creatorID(ctx context.Context) (string, bool) {
	if a, ok := AccountFromContext(ctx); ok {
		return a.ID.Hex(), true
	}
	if u, ok := UserFromContext(ctx); ok {
		return u.ID.Hex(), true
	}
	return "", false
}
