package handler

import (
	"net/http"
	"strconv"
	"time"

	"grabwallet/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// Page wraps a paginated list.
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func respondPage(c *gin.Context, items interface{}, total int64, page, limit int) {
	respond(c, http.StatusOK, Page{Items: items, Total: total, Page: page, Limit: limit}, "ok")
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, nil, message)
}

// respondError maps err's kind to a status. Server side kinds are logged and
// their cause is not exposed.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	msg := domain.MessageOf(err, "internal server error")
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"path": c.FullPath(),
			"kind": kind.String(),
		}).Error("request failed")
		if kind == domain.KindInternal {
			msg = "internal server error"
		}
	}
	respond(c, status, nil, msg)
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// parseDate reads a YYYY-MM-DD query value in loc. Empty values yield the zero time.
func parseDate(c *gin.Context, key string, loc *time.Location) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		badRequest(c, key+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
