package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"licensekit.backend/internal/interfaces/http/response"
	"licensekit.backend/internal/usecases"
)

const (
	// CredentialHeader is the primary header carrying the API credential
	CredentialHeader = "X-Api-Credential"
	// AuthorizationHeader is accepted as "Bearer <credential>" for clients
	// that prefer it
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
)

// CredentialAuthMiddleware gates every authenticated endpoint through the
// auth gatekeeper. Blocked and Unauthorized come back as distinct codes so
// callers can tell "wait out the window" from "fix the credential".
func CredentialAuthMiddleware(gatekeeper *usecases.CredentialUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := extractCredential(c)

		err := gatekeeper.Authenticate(c.Request.Context(), credential, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			response.AbortError(c, err)
			return
		}

		c.Next()
	}
}

func extractCredential(c *gin.Context) string {
	if cred := c.GetHeader(CredentialHeader); cred != "" {
		return cred
	}
	if auth := c.GetHeader(AuthorizationHeader); strings.HasPrefix(auth, BearerPrefix) {
		return strings.TrimPrefix(auth, BearerPrefix)
	}
	return ""
}
