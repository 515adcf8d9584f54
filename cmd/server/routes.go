package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"licensekit.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	licenseHandler    *handlers.LicenseHandler
	adminHandler      *handlers.AdminHandler
	credentialHandler *handlers.CredentialHandler

	credentialAuth    gin.HandlerFunc
	operatorAuth      gin.HandlerFunc
	validateLimiter   gin.HandlerFunc
	deactivateLimiter gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Api-Credential, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// License activation routes (credential-protected)
		licenses := v1.Group("/licenses")
		licenses.Use(d.credentialAuth)
		{
			licenses.POST("/validate", d.validateLimiter, d.licenseHandler.Validate)
			licenses.POST("/deactivate", d.deactivateLimiter, d.licenseHandler.Deactivate)
			licenses.POST("/recheck", d.licenseHandler.Recheck)
			licenses.POST("/revoke", d.licenseHandler.Revoke)
			licenses.POST("/deactivate-controlled", d.deactivateLimiter, d.licenseHandler.DeactivateControlled)
			licenses.POST("/transfer", d.licenseHandler.TransferSlot)
		}

		// Public product lookup (no credential, no secrets in the response)
		products := v1.Group("/products")
		{
			products.GET("/info", d.licenseHandler.ProductInfo)
		}

		// Operator routes (JWT-protected)
		admin := v1.Group("/admin")
		admin.Use(d.operatorAuth)
		{
			admin.POST("/licenses", d.adminHandler.IssueLicense)
			admin.GET("/licenses", d.adminHandler.ListLicenses)
			admin.GET("/licenses/:licenseKey", d.adminHandler.GetLicense)
			admin.POST("/licenses/deactivate", d.adminHandler.AdminDeactivate)
			admin.POST("/licenses/transfer", d.adminHandler.AdminTransfer)
			admin.POST("/licenses/reset-transfers", d.adminHandler.ResetTransfers)
			admin.POST("/licenses/domain-lock", d.adminHandler.ToggleDomainLock)
			admin.POST("/licenses/transfer-limit", d.adminHandler.EditTransferLimit)
			admin.POST("/licenses/expiry-sweep", d.adminHandler.ExpirySweep)
			admin.POST("/auth-log/purge", d.adminHandler.PurgeAuthLog)

			admin.POST("/credentials", d.credentialHandler.Create)
			admin.GET("/credentials", d.credentialHandler.List)
			admin.POST("/credentials/:id/enable", d.credentialHandler.Enable)
			admin.POST("/credentials/:id/disable", d.credentialHandler.Disable)
			admin.DELETE("/credentials/:id", d.credentialHandler.Delete)
		}
	}
}
