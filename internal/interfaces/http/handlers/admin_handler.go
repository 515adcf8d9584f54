package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/interfaces/http/response"
	"licensekit.backend/internal/usecases"
	"licensekit.backend/pkg/utils"
)

// AdminHandler handles operator-only license administration
type AdminHandler struct {
	licenseUsecase    *usecases.LicenseUsecase
	transferUsecase   *usecases.TransferUsecase
	activationUsecase *usecases.ActivationUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	licenseUsecase *usecases.LicenseUsecase,
	transferUsecase *usecases.TransferUsecase,
	activationUsecase *usecases.ActivationUsecase,
) *AdminHandler {
	return &AdminHandler{
		licenseUsecase:    licenseUsecase,
		transferUsecase:   transferUsecase,
		activationUsecase: activationUsecase,
	}
}

// IssueLicense handles license issuance
// POST /api/v1/admin/licenses
func (h *AdminHandler) IssueLicense(c *gin.Context) {
	var input entities.IssueLicenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lic, err := h.licenseUsecase.IssueLicense(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, lic)
}

// GetLicense handles a single license lookup
// GET /api/v1/admin/licenses/:licenseKey
func (h *AdminHandler) GetLicense(c *gin.Context) {
	lic, err := h.licenseUsecase.GetLicense(c.Request.Context(), c.Param("licenseKey"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lic)
}

// ListLicenses handles the paginated license listing
// GET /api/v1/admin/licenses?page=1&limit=20
func (h *AdminHandler) ListLicenses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	params := utils.GetPaginationParams(page, limit)

	licenses, meta, err := h.licenseUsecase.ListLicenses(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"licenses":   licenses,
		"pagination": meta,
	})
}

// AdminDeactivate handles operator-forced deactivation, which bypasses the
// license's domain lock
// POST /api/v1/admin/licenses/deactivate
func (h *AdminHandler) AdminDeactivate(c *gin.Context) {
	var input entities.ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.activationUsecase.Deactivate(c.Request.Context(), input.LicenseKey, input.SiteURL, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ResetTransfers handles an operator reset of a slot's transfer counter
// POST /api/v1/admin/licenses/reset-transfers
func (h *AdminHandler) ResetTransfers(c *gin.Context) {
	var input entities.ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.transferUsecase.ResetTransferCount(c.Request.Context(), input.LicenseKey, input.SiteURL); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "transfer count reset"})
}

// ToggleDomainLock handles flipping the domain lock on a license
// POST /api/v1/admin/licenses/domain-lock
func (h *AdminHandler) ToggleDomainLock(c *gin.Context) {
	var input struct {
		LicenseKey string `json:"licenseKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	locked, err := h.transferUsecase.ToggleDomainLock(c.Request.Context(), input.LicenseKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"domainLocked": locked})
}

// EditTransferLimit handles an operator change to a license's transfer limit
// POST /api/v1/admin/licenses/transfer-limit
func (h *AdminHandler) EditTransferLimit(c *gin.Context) {
	var input struct {
		LicenseKey    string `json:"licenseKey" binding:"required"`
		TransferLimit *int   `json:"transferLimit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.transferUsecase.EditTransferLimit(c.Request.Context(), input.LicenseKey, *input.TransferLimit); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transferLimit": *input.TransferLimit})
}

// AdminTransfer handles an operator-forced slot transfer, which bypasses
// domain-lock and eligibility checks
// POST /api/v1/admin/licenses/transfer
func (h *AdminHandler) AdminTransfer(c *gin.Context) {
	var input entities.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.transferUsecase.TransferSlot(c.Request.Context(), input.LicenseKey, input.OldDomain, input.NewDomain, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ExpirySweep handles the on-demand expiry status sweep
// POST /api/v1/admin/licenses/expiry-sweep
func (h *AdminHandler) ExpirySweep(c *gin.Context) {
	count, err := h.licenseUsecase.ExpirySweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": count})
}

// PurgeAuthLog handles pruning old auth-trail rows
// POST /api/v1/admin/auth-log/purge?retentionDays=90
func (h *AdminHandler) PurgeAuthLog(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("retentionDays", "90"))
	if err != nil || days < 1 {
		response.Error(c, domainerrors.BadRequest("retentionDays must be a positive integer"))
		return
	}

	purged, err := h.licenseUsecase.PurgeAuthLog(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purged": purged})
}
