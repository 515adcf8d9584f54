package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/interfaces/http/response"
	"licensekit.backend/internal/usecases"
	"licensekit.backend/pkg/crypto"
	"licensekit.backend/pkg/utils"
)

// LicenseHandler handles the license activation API
type LicenseHandler struct {
	activationUsecase *usecases.ActivationUsecase
	transferUsecase   *usecases.TransferUsecase
	licenseUsecase    *usecases.LicenseUsecase
	webhookSecret     string
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(
	activationUsecase *usecases.ActivationUsecase,
	transferUsecase *usecases.TransferUsecase,
	licenseUsecase *usecases.LicenseUsecase,
	webhookSecret string,
) *LicenseHandler {
	return &LicenseHandler{
		activationUsecase: activationUsecase,
		transferUsecase:   transferUsecase,
		licenseUsecase:    licenseUsecase,
		webhookSecret:     webhookSecret,
	}
}

// Validate handles license validation/activation
// POST /api/v1/licenses/validate
func (h *LicenseHandler) Validate(c *gin.Context) {
	var input entities.ValidateInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.activationUsecase.Validate(c.Request.Context(), input.LicenseKey, input.SiteURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Deactivate handles user-initiated deactivation
// POST /api/v1/licenses/deactivate
func (h *LicenseHandler) Deactivate(c *gin.Context) {
	var input entities.ValidateInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.activationUsecase.Deactivate(c.Request.Context(), input.LicenseKey, input.SiteURL, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Revoke handles license revocation
// POST /api/v1/licenses/revoke
func (h *LicenseHandler) Revoke(c *gin.Context) {
	var input struct {
		LicenseKey string `json:"licenseKey" binding:"required"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.activationUsecase.Revoke(c.Request.Context(), input.LicenseKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Recheck handles the read-only activation probe
// POST /api/v1/licenses/recheck
func (h *LicenseHandler) Recheck(c *gin.Context) {
	var input entities.ValidateInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.activationUsecase.Recheck(c.Request.Context(), input.LicenseKey, input.SiteURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// DeactivateControlled handles the signature-authenticated
// deactivation-with-transfer flow: verify the signature, then consume a
// transfer and release the slot in one transaction.
// POST /api/v1/licenses/deactivate-controlled
func (h *LicenseHandler) DeactivateControlled(c *gin.Context) {
	var input entities.ControlledDeactivateInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	signed := crypto.ControlledDeactivationString(input.LicenseKey, utils.NormalizeDomain(input.Domain))
	if !crypto.VerifyHMACSHA256Hex(h.webhookSecret, signed, input.Signature) {
		response.Error(c, domainerrors.Unauthorized("invalid signature"))
		return
	}

	resp, err := h.transferUsecase.ConsumeTransferAndDeactivate(c.Request.Context(), input.LicenseKey, input.Domain)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// TransferSlot handles user-initiated slot transfer
// POST /api/v1/licenses/transfer
func (h *LicenseHandler) TransferSlot(c *gin.Context) {
	var input entities.TransferInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.transferUsecase.TransferSlot(c.Request.Context(), input.LicenseKey, input.OldDomain, input.NewDomain, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ProductInfo handles the public, unauthenticated product lookup
// GET /api/v1/products/info?licenseKey=...
func (h *LicenseHandler) ProductInfo(c *gin.Context) {
	licenseKey := c.Query("licenseKey")
	if licenseKey == "" {
		response.Error(c, domainerrors.BadRequest("licenseKey query parameter is required"))
		return
	}

	resp, err := h.licenseUsecase.ProductInfo(c.Request.Context(), licenseKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
