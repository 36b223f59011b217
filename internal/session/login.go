package session

import (
	"context"
	"errors"

	"kyri56xcaesar/pms-dashboard/internal/credential"
	"kyri56xcaesar/pms-dashboard/internal/gateway"
)

// InvalidCredentials is the only thing a login failure ever tells the user.
const InvalidCredentials = "Invalid credentials"

// Authenticator exchanges username and password for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (gateway.TokenResponse, error)
}

// SignIn runs the whole login flow: authenticate, decode the returned token
// for its role and subject, then move the store to Authenticated.
func SignIn(ctx context.Context, auth Authenticator, store *Store, username, password string) (Session, error) {
	tok, err := auth.Login(ctx, username, password)
	if err != nil {
		return Anonymous(), err
	}

	claims, err := credential.Decode(tok.AccessToken)
	if err != nil {
		return Anonymous(), err
	}

	err = store.Login(ctx, Credentials{
		Username: username,
		Role:     ParseRole(claims.Role),
		Token:    tok.AccessToken,
		User:     &User{ID: claims.Subject, Username: username},
	})
	if err != nil {
		return Anonymous(), err
	}

	return store.Snapshot(), nil
}

// UserMessage maps a SignIn error to what the login form shows. Rejected
// credentials and undecodable tokens look the same from outside.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var authErr *gateway.AuthenticationError
	var malformed *credential.MalformedTokenError
	if errors.As(err, &authErr) || errors.As(err, &malformed) {
		return InvalidCredentials
	}

	// the credentials were fine but the session could not be stored
	return "Could not save the session"
}
