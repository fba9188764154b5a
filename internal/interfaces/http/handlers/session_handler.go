package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cdforge/internal/application/lifecycle"
	domain "github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/types/structure"
)

// SessionHandler exposes session records.
type SessionHandler struct {
	sessions lifecycle.Service
	logger   logging.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc lifecycle.Service, logger logging.Logger) *SessionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SessionHandler{sessions: svc, logger: logger.Named("session_handler")}
}

// RegisterRoutes registers the session routes.
func (h *SessionHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/sesiones/:id", h.Get)
	r.DELETE("/sesiones/:id", h.Delete)
}

// Get handles GET /sesiones/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "", endpointSession, err)
		return
	}
	c.JSON(http.StatusOK, structure.SessionResponse{Success: true, Session: toSessionDTO(sess)})
}

// Delete handles DELETE /sesiones/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "", endpointSession, err)
		return
	}
	c.JSON(http.StatusOK, structure.DeleteResponse{Success: true, Deleted: id})
}

func toSessionDTO(s *domain.Session) structure.Session {
	return structure.Session{
		ID:        s.ID,
		UserDir:   s.UserDir,
		Units:     s.Units,
		Status:    string(s.Status),
		SMILES:    s.SMILES,
		Error:     s.Error,
		Artifacts: s.Artifacts,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

//Personal.AI order the ending
