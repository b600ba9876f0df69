package client

import (
	"context"
	"strings"
)

// AuthProvider supplies the bearer token for each request.
type AuthProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is an AuthProvider holding a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
