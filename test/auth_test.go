//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/users"
)

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	user := s.registerUser(ctx)
	assert.Equal(t, "Europe/Berlin", user.User.Timezone)

	// same username again
	resp := s.do(ctx, http.MethodPost, "/auth/register", "", users.RegisterRequest{
		Email:    "other-" + user.User.Email,
		Username: user.User.Username,
		Password: "supersecret",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(ctx, http.MethodPost, "/auth/login", "", users.LoginRequest{
		Login:    user.User.Username,
		Password: "wrong-password",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(ctx, http.MethodPost, "/auth/login", "", users.LoginRequest{
		Login:    user.User.Email,
		Password: user.Password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login users.AuthResponse
	s.decode(resp, &login)
	require.NotEmpty(t, login.Token)

	resp = s.do(ctx, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me users.User
	s.decode(resp, &me)
	assert.Equal(t, user.User.ID, me.ID)

	resp = s.do(ctx, http.MethodPost, "/auth/logout", login.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the revoked token is dead, the one from registration still works
	resp = s.do(ctx, http.MethodGet, "/auth/me", login.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(ctx, http.MethodGet, "/auth/me", user.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestPublicPaths() {
	t := s.T()
	ctx := context.Background()

	for _, path := range []string{"/", "/version", "/exercises"} {
		resp := s.do(ctx, http.MethodGet, path, "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	for _, path := range []string{"/workouts/page/1/size/10", "/auth/me", "/analytics/summary"} {
		resp := s.do(ctx, http.MethodGet, path, "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}
