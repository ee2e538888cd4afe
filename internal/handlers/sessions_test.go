package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionHandler_ListAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	env.register("erin", "erin@example.com", "ListMyS3ssions!")

	first := env.login("erin", "ListMyS3ssions!")
	second := env.login("erin", "ListMyS3ssions!")

	w := env.request(http.MethodGet, "/api/v1/sessions", nil, second.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Sessions []struct {
			ID      string `json:"id"`
			Current bool   `json:"current"`
		} `json:"sessions"`
	}
	decodeInto(t, decodeResponse(t, w).Data, &data)
	require.Len(t, data.Sessions, 2)

	var currentID, otherID string
	for _, s := range data.Sessions {
		if s.Current {
			currentID = s.ID
		} else {
			otherID = s.ID
		}
	}
	require.NotEmpty(t, currentID)
	require.NotEmpty(t, otherID)

	// Revoke the other session; its refresh token stops working.
	revoke := env.request(http.MethodPost, "/api/v1/sessions/revoke/"+otherID, nil, second.AccessToken)
	require.Equal(t, http.StatusOK, revoke.Code)

	refresh := env.request(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": first.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, refresh.Code)

	w = env.request(http.MethodGet, "/api/v1/sessions", nil, second.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, decodeResponse(t, w).Data, &data)
	require.Len(t, data.Sessions, 1)
}

func TestSessionHandler_RevokeForeignSession(t *testing.T) {
	env := newTestEnv(t)
	env.register("frank", "frank@example.com", "Fr4nksPassword!")
	env.register("grace", "grace@example.com", "Gr4cesPassword!")

	frank := env.login("frank", "Fr4nksPassword!")
	grace := env.login("grace", "Gr4cesPassword!")

	// Find frank's session id.
	w := env.request(http.MethodGet, "/api/v1/sessions", nil, frank.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	decodeInto(t, decodeResponse(t, w).Data, &data)
	require.Len(t, data.Sessions, 1)

	// Grace cannot revoke it.
	revoke := env.request(http.MethodPost, "/api/v1/sessions/revoke/"+data.Sessions[0].ID, nil, grace.AccessToken)
	require.Equal(t, http.StatusNotFound, revoke.Code)
}

func TestSessionHandler_RevokeAll(t *testing.T) {
	env := newTestEnv(t)
	env.register("heidi", "heidi@example.com", "He1disPassword!")

	first := env.login("heidi", "He1disPassword!")
	second := env.login("heidi", "He1disPassword!")

	revoke := env.request(http.MethodPost, "/api/v1/sessions/revoke_all", nil, second.AccessToken)
	require.Equal(t, http.StatusOK, revoke.Code)

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		refresh := env.request(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
			"refresh_token": token,
		}, "")
		require.Equal(t, http.StatusUnauthorized, refresh.Code)
	}
}
