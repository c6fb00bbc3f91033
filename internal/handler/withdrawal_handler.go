package handler

import (
	"net/http"

	"grabwallet/internal/middleware"
	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WithdrawalHandler struct {
	withdrawalSvc *service.WithdrawalService
	addressSvc    *service.AddressService
	log           *logrus.Entry
}

func NewWithdrawalHandler(withdrawalSvc *service.WithdrawalService, addressSvc *service.AddressService, log *logrus.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc, addressSvc: addressSvc, log: log.WithField("handler", "withdrawal")}
}

// Create handles POST /me/withdrawals. The amount leaves balance and profit at once.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req struct {
		Address string          `json:"address" binding:"required,max=255"`
		Amount  decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.withdrawalSvc.Request(c.Request.Context(), middleware.GetUserID(c), req.Address, req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, w, "withdrawal requested")
}

// ListMine handles GET /me/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.withdrawalSvc.ListMine(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondPage(c, list, total, page, limit)
}

// SaveAddress handles POST /me/withdrawal-addresses.
func (h *WithdrawalHandler) SaveAddress(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.addressSvc.Save(c.Request.Context(), middleware.GetUserID(c), req.Address)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, a, "withdrawal address saved")
}

// ListAddresses handles GET /me/withdrawal-addresses.
func (h *WithdrawalHandler) ListAddresses(c *gin.Context) {
	list, err := h.addressSvc.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, list, "ok")
}
