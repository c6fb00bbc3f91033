package handler

import (
	"net/http"
	"strconv"
	"time"

	"grabwallet/internal/middleware"
	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReferralHandler struct {
	teamSvc *service.TeamService
	loc     *time.Location
	log     *logrus.Entry
}

func NewReferralHandler(teamSvc *service.TeamService, loc *time.Location, log *logrus.Logger) *ReferralHandler {
	return &ReferralHandler{teamSvc: teamSvc, loc: loc, log: log.WithField("handler", "referral")}
}

// GetMyShareCode returns the id others register under.
// GET /me/share-code
func (h *ReferralHandler) GetMyShareCode(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"shared_id": middleware.GetUserID(c)}, "ok")
}

// TeamStats handles GET /me/team?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD. Both default to today.
func (h *ReferralHandler) TeamStats(c *gin.Context) {
	from, ok := parseDate(c, "start_date", h.loc)
	if !ok {
		return
	}
	to, ok := parseDate(c, "end_date", h.loc)
	if !ok {
		return
	}
	stats, err := h.teamSvc.Stats(c.Request.Context(), middleware.GetUserID(c), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, stats, "ok")
}

// TeamMembers handles GET /me/team/members?level=1..3.
func (h *ReferralHandler) TeamMembers(c *gin.Context) {
	level, err := strconv.Atoi(c.DefaultQuery("level", "1"))
	if err != nil {
		badRequest(c, "level must be a number")
		return
	}
	members, err := h.teamSvc.Members(c.Request.Context(), middleware.GetUserID(c), level)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"level": level, "members": members}, "ok")
}
