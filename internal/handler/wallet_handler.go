package handler

import (
	"net/http"

	"grabwallet/internal/middleware"
	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WalletHandler struct {
	ledger     *service.LedgerService
	depositSvc *service.DepositService
	log        *logrus.Entry
}

func NewWalletHandler(ledger *service.LedgerService, depositSvc *service.DepositService, log *logrus.Logger) *WalletHandler {
	return &WalletHandler{ledger: ledger, depositSvc: depositSvc, log: log.WithField("handler", "wallet")}
}

// GetBalance handles GET /me/wallet.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	acct, err := h.ledger.Account(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	last, err := h.ledger.Latest(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user_id":          userID,
		"balance":          acct.Balance,
		"total_profit":     acct.TotalProfit,
		"last_transaction": last,
	}, "ok")
}

// ListTransactions handles GET /me/wallet/transactions, newest first.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	page, limit := parsePagination(c)
	txs, total, err := h.ledger.History(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondPage(c, txs, total, page, limit)
}

// Deposit handles POST /me/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Reference string          `json:"reference" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.depositSvc.Deposit(c.Request.Context(), middleware.GetUserID(c), req.Amount, req.Reference)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, res, "deposit recorded")
}
