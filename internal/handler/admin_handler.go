package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"grabwallet/internal/domain"
	"grabwallet/internal/middleware"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"
	"grabwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	adminRepo     *repository.AdminRepository
	userRepo      *repository.UserRepository
	settingRepo   *repository.SettingRepository
	auditRepo     *repository.AuditLogRepository
	catalogSvc    *service.CatalogService
	withdrawalSvc *service.WithdrawalService
	depositSvc    *service.DepositService
	ledger        *service.LedgerService
	log           *logrus.Entry
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	userRepo *repository.UserRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
	catalogSvc *service.CatalogService,
	withdrawalSvc *service.WithdrawalService,
	depositSvc *service.DepositService,
	ledger *service.LedgerService,
	log *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:     adminRepo,
		userRepo:      userRepo,
		settingRepo:   settingRepo,
		auditRepo:     auditRepo,
		catalogSvc:    catalogSvc,
		withdrawalSvc: withdrawalSvc,
		depositSvc:    depositSvc,
		ledger:        ledger,
		log:           log.WithField("handler", "admin"),
	}
}

// audit records an admin mutation. A failed write is logged and does not fail the request.
func (h *AdminHandler) audit(c *gin.Context, action, resource, resourceID string, meta interface{}) {
	entry := &models.AuditLog{
		ActorID:    middleware.GetUserID(c),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
	}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			entry.Metadata = string(b)
		}
	}
	if err := h.auditRepo.Create(context.WithoutCancel(c.Request.Context()), entry); err != nil {
		h.log.WithError(err).WithField("action", action).Warn("audit log not written")
	}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, domain.Internal("failed to load stats", err))
		return
	}
	respond(c, http.StatusOK, stats, "ok")
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.userRepo.List(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, h.log, domain.Internal("failed to list users", err))
		return
	}
	respondPage(c, users, total, page, limit)
}

// GetUserWallet handles GET /admin/users/:user_id/wallet.
func (h *AdminHandler) GetUserWallet(c *gin.Context) {
	userID := c.Param("user_id")
	if _, err := h.userRepo.GetByUserID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, h.log, service.ErrUserNotFound)
			return
		}
		respondError(c, h.log, err)
		return
	}
	acct, err := h.ledger.Account(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	page, limit := parsePagination(c)
	txs, total, err := h.ledger.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"account":      acct,
		"transactions": Page{Items: txs, Total: total, Page: page, Limit: limit},
	}, "ok")
}

type walletAdjustment struct {
	UserID    string          `json:"user_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference" binding:"max=255"`
}

// DepositToUser handles POST /admin/wallet/deposit. Bonus rules apply.
func (h *AdminHandler) DepositToUser(c *gin.Context) {
	var req walletAdjustment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.depositSvc.Deposit(c.Request.Context(), req.UserID, req.Amount, req.Reference)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "wallet.deposit", "user", req.UserID, gin.H{"amount": req.Amount.String()})
	respond(c, http.StatusCreated, res, "deposit recorded")
}

// CreditUser handles POST /admin/wallet/credit. No bonus, no profit.
func (h *AdminHandler) CreditUser(c *gin.Context) {
	var req walletAdjustment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tx, err := h.depositSvc.Credit(c.Request.Context(), req.UserID, req.Amount, req.Reference)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "wallet.credit", "user", req.UserID, gin.H{"amount": req.Amount.String()})
	respond(c, http.StatusCreated, tx, "credit recorded")
}

// ListWithdrawals handles GET /admin/withdrawals?status=Pending.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.withdrawalSvc.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, domain.Internal("failed to list withdrawals", err))
		return
	}
	respondPage(c, list, total, page, limit)
}

// ResolveWithdrawal handles PATCH /admin/withdrawals/:request_id.
func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	requestID := c.Param("request_id")
	w, err := h.withdrawalSvc.Resolve(c.Request.Context(), requestID, req.Status, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "withdrawal.resolve", "withdrawal", requestID, gin.H{"status": req.Status})
	respond(c, http.StatusOK, w, "withdrawal updated")
}

// ListPlans handles GET /admin/plans.
func (h *AdminHandler) ListPlans(c *gin.Context) {
	plans, err := h.catalogSvc.Plans(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, plans, "ok")
}

type planRequest struct {
	Title      string          `json:"title" binding:"required,max=100"`
	Commission decimal.Decimal `json:"commission"`
	Price      decimal.Decimal `json:"price"`
	GrabNo     int             `json:"grab_no"`
	ShareLimit int             `json:"share_limit"`
	ImageURL   string          `json:"image_url" binding:"max=512"`
}

func (r planRequest) plan(id uint) *models.Plan {
	return &models.Plan{
		ID:         id,
		Title:      r.Title,
		Commission: r.Commission,
		Price:      r.Price,
		GrabNo:     r.GrabNo,
		ShareLimit: r.ShareLimit,
		ImageURL:   r.ImageURL,
	}
}

// CreatePlan handles POST /admin/plans.
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := req.plan(0)
	if err := h.catalogSvc.SavePlan(c.Request.Context(), p); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "plan.create", "plan", strconv.FormatUint(uint64(p.ID), 10), req)
	respond(c, http.StatusCreated, p, "plan created")
}

// UpdatePlan handles PUT /admin/plans/:id.
func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := req.plan(id)
	if err := h.catalogSvc.SavePlan(c.Request.Context(), p); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "plan.update", "plan", c.Param("id"), req)
	respond(c, http.StatusOK, p, "plan updated")
}

// DeletePlan handles DELETE /admin/plans/:id.
func (h *AdminHandler) DeletePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "plan.delete", "plan", c.Param("id"), nil)
	respond(c, http.StatusOK, nil, "plan deleted")
}

type productRequest struct {
	ProductName string          `json:"product_name" binding:"required,max=255"`
	Level       string          `json:"level" binding:"max=50"`
	Price       decimal.Decimal `json:"price"`
	ProductImg  string          `json:"product_img" binding:"max=512"`
}

func (r productRequest) product(id uint) *models.Product {
	return &models.Product{
		ID:          id,
		ProductName: r.ProductName,
		Level:       r.Level,
		Price:       r.Price,
		ProductImg:  r.ProductImg,
	}
}

// ListProducts handles GET /admin/products.
func (h *AdminHandler) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.catalogSvc.Products(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondPage(c, list, total, page, limit)
}

// CreateProduct handles POST /admin/products.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := req.product(0)
	if err := h.catalogSvc.SaveProduct(c.Request.Context(), p); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "product.create", "product", strconv.FormatUint(uint64(p.ID), 10), req)
	respond(c, http.StatusCreated, p, "product created")
}

// UpdateProduct handles PUT /admin/products/:id.
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := req.product(id)
	if err := h.catalogSvc.SaveProduct(c.Request.Context(), p); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "product.update", "product", c.Param("id"), req)
	respond(c, http.StatusOK, p, "product updated")
}

// DeleteProduct handles DELETE /admin/products/:id.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "product.delete", "product", c.Param("id"), nil)
	respond(c, http.StatusOK, nil, "product deleted")
}

// GetLevels handles GET /admin/levels.
func (h *AdminHandler) GetLevels(c *gin.Context) {
	l, err := h.catalogSvc.Levels(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, l, "ok")
}

// UpdateLevels handles PUT /admin/levels.
func (h *AdminHandler) UpdateLevels(c *gin.Context) {
	var req struct {
		LevelFirst  decimal.Decimal `json:"level_first"`
		LevelSecond decimal.Decimal `json:"level_second"`
		LevelThird  decimal.Decimal `json:"level_third"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	l := &models.LevelSetting{LevelFirst: req.LevelFirst, LevelSecond: req.LevelSecond, LevelThird: req.LevelThird}
	if err := h.catalogSvc.SaveLevels(c.Request.Context(), l); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "levels.update", "levels", "", req)
	respond(c, http.StatusOK, l, "levels updated")
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, domain.Internal("failed to load settings", err))
		return
	}
	respond(c, http.StatusOK, list, "ok")
}

// UpdateSettings handles PUT /admin/settings with a key to decimal-string map.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	for k, v := range req {
		if !domain.IsSettingKey(k) {
			badRequest(c, "unknown setting "+k)
			return
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			badRequest(c, k+" must be a non-negative number")
			return
		}
	}
	actor := middleware.GetUserID(c)
	for k, v := range req {
		if err := h.settingRepo.Set(c.Request.Context(), k, v, actor); err != nil {
			respondError(c, h.log, domain.Internal("failed to save settings", err))
			return
		}
	}
	h.audit(c, "settings.update", "settings", "", req)
	respond(c, http.StatusOK, req, "settings updated")
}

// ListAuditLogs handles GET /admin/audit-logs.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.auditRepo.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.log, domain.Internal("failed to list audit logs", err))
		return
	}
	respondPage(c, list, total, page, limit)
}
