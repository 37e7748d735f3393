//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/users"
)

type testUser struct {
	users.AuthResponse
	Password string
}

// do sends body as json (when not nil) with the bearer token (when not empty).
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) *http.Response {
	t := s.T()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) decode(resp *http.Response, target any) {
	defer resp.Body.Close()
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(target))
}

func (s *IntegrationTestSuite) registerUser(ctx context.Context) testUser {
	t := s.T()
	password := gofakeit.Password(true, true, true, false, false, 16)
	req := users.RegisterRequest{
		Email:    strings.ToLower(gofakeit.Email()),
		Username: gofakeit.LetterN(12),
		Password: password,
		Timezone: "Europe/Berlin",
	}

	resp := s.do(ctx, http.MethodPost, "/auth/register", "", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user testUser
	s.decode(resp, &user.AuthResponse)
	require.NotEmpty(t, user.Token)
	user.Password = password
	return user
}
