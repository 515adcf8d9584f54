package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/interfaces/http/response"
	"licensekit.backend/internal/usecases"
)

// CredentialHandler handles operator management of API credentials
type CredentialHandler struct {
	credentialUsecase *usecases.CredentialUsecase
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentialUsecase *usecases.CredentialUsecase) *CredentialHandler {
	return &CredentialHandler{credentialUsecase: credentialUsecase}
}

// Create mints a new API credential. The plaintext secret appears only in
// this response.
// POST /api/v1/admin/credentials
func (h *CredentialHandler) Create(c *gin.Context) {
	var input entities.CreateCredentialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.credentialUsecase.CreateCredential(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// List returns all credentials without secrets
// GET /api/v1/admin/credentials
func (h *CredentialHandler) List(c *gin.Context) {
	credentials, err := h.credentialUsecase.ListCredentials(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"credentials": credentials})
}

// Enable re-activates a disabled credential
// POST /api/v1/admin/credentials/:id/enable
func (h *CredentialHandler) Enable(c *gin.Context) {
	h.setStatus(c, entities.ApiCredentialActive)
}

// Disable soft-disables a credential without deleting its usage history
// POST /api/v1/admin/credentials/:id/disable
func (h *CredentialHandler) Disable(c *gin.Context) {
	h.setStatus(c, entities.ApiCredentialDisabled)
}

// Delete removes a credential permanently
// DELETE /api/v1/admin/credentials/:id
func (h *CredentialHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid credential id"))
		return
	}

	if err := h.credentialUsecase.DeleteCredential(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "credential deleted"})
}

func (h *CredentialHandler) setStatus(c *gin.Context, status entities.ApiCredentialStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid credential id"))
		return
	}

	if err := h.credentialUsecase.SetCredentialStatus(c.Request.Context(), id, status); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": status})
}
