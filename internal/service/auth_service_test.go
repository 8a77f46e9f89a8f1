package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterLoginParse(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store.Users(), "test-secret", time.Hour, f.log)

	user, err := svc.Register(context.Background(), "Sam", "Sam@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(context.Background(), "Sam again", "sam@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, _, err = svc.Login(context.Background(), "sam@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	token, loggedIn, err := svc.Login(context.Background(), "sam@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuth_ParseTokenRejects(t *testing.T) {
	f := newFixture(t)
	issuer := NewAuthService(f.store.Users(), "secret-a", time.Hour, f.log)
	verifier := NewAuthService(f.store.Users(), "secret-b", time.Hour, f.log)

	_, err := issuer.Register(context.Background(), "Kim", "kim@example.com", "password1")
	require.NoError(t, err)
	token, _, err := issuer.Login(context.Background(), "kim@example.com", "password1")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
