package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/dropbuddy/dropbuddy/internal/auth"
	"github.com/dropbuddy/dropbuddy/internal/middleware"
	"github.com/dropbuddy/dropbuddy/internal/models"
	"github.com/dropbuddy/dropbuddy/pkg/errors"
	"github.com/dropbuddy/dropbuddy/pkg/response"
)

// SessionHandler exposes session management endpoints for the current user.
type SessionHandler struct {
	sessions *iauth.SessionService
}

func NewSessionHandler(sessions *iauth.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	sessions, err := h.sessions.ListUserSessions(userID)
	if err != nil {
		response.Error(c, errors.ErrDatabase.WithInternal(err))
		return
	}

	current := c.GetString(middleware.CtxSessionIDKey)
	payload := make([]gin.H, 0, len(sessions))
	for i := range sessions {
		payload = append(payload, sessionPayload(&sessions[i], current))
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": payload})
}

// POST /api/v1/sessions/revoke/:id
func (h *SessionHandler) Revoke(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		response.Error(c, errors.NewBadRequest("session id is required"))
		return
	}

	// Only allow revoking sessions the caller owns.
	owned, err := h.sessions.ListUserSessions(userID)
	if err != nil {
		response.Error(c, errors.ErrDatabase.WithInternal(err))
		return
	}
	var found bool
	for i := range owned {
		if owned[i].ID == sessionID {
			found = true
			break
		}
	}
	if !found {
		response.Error(c, errors.ErrNotFound)
		return
	}

	if err := h.sessions.RevokeSession(sessionID); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// POST /api/v1/sessions/revoke_all
func (h *SessionHandler) RevokeAll(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeUserSessions(userID); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

func sessionPayload(session *models.Session, currentID string) gin.H {
	return gin.H{
		"id":           session.ID,
		"ip_address":   session.IPAddress,
		"user_agent":   session.UserAgent,
		"created_at":   session.CreatedAt,
		"last_used_at": session.LastUsedAt,
		"expires_at":   session.ExpiresAt,
		"current":      session.ID == currentID,
	}
}
