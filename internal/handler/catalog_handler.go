package handler

import (
	"net/http"

	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler serves the read side of plans and products to signed-in users.
type CatalogHandler struct {
	catalogSvc *service.CatalogService
	log        *logrus.Entry
}

func NewCatalogHandler(catalogSvc *service.CatalogService, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc, log: log.WithField("handler", "catalog")}
}

// ListPlans handles GET /plans, highest price first.
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	plans, err := h.catalogSvc.Plans(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, plans, "ok")
}

// ListProducts handles GET /products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.catalogSvc.Products(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondPage(c, list, total, page, limit)
}
