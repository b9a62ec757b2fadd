package middleware

import (
	"context"
	"garage-site/internal/auth"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// UserInfo is the caller as resolved by the authorizer.
type UserInfo struct {
	Subject string
	// Via names how the subject was established: "token", "session" or "".
	Via string
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Subject: auth.Anonymous}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// IsAdmin reports whether the request was made by the administrator.
func IsAdmin(ctx context.Context) bool {
	return GetUserInfo(ctx).Subject == auth.Admin
}
