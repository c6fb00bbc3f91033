package handler

import (
	"context"
	"net/http"

	"grabwallet/internal/domain"
	"grabwallet/internal/middleware"
	"grabwallet/internal/models"
	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GrabHistory lists a user's past grabs.
type GrabHistory interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.CustomerProductReport, int64, error)
}

type GrabHandler struct {
	grabSvc *service.GrabService
	reports GrabHistory
	log     *logrus.Entry
}

func NewGrabHandler(grabSvc *service.GrabService, reports GrabHistory, log *logrus.Logger) *GrabHandler {
	return &GrabHandler{grabSvc: grabSvc, reports: reports, log: log.WithField("handler", "grab")}
}

// Grab handles POST /me/grab. A spent quota answers 200 with status LIMIT_REACHED.
func (h *GrabHandler) Grab(c *gin.Context) {
	res, err := h.grabSvc.Grab(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	msg := res.Message
	if res.Status == domain.GrabStatusGrabbed {
		msg = "product grabbed"
	}
	respond(c, http.StatusOK, res, msg)
}

// Level handles GET /me/level.
func (h *GrabHandler) Level(c *gin.Context) {
	view, err := h.grabSvc.Level(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, view, "ok")
}

// History handles GET /me/grab/history.
func (h *GrabHandler) History(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.reports.ListByUser(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondPage(c, list, total, page, limit)
}
