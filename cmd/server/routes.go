package main

import (
	"github.com/gin-gonic/gin"
	"parcelhub.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	packageHandler  *handlers.PackageHandler
	paymentHandler  *handlers.PaymentHandler
	adminHandler    *handlers.AdminHandler
	authMiddleware  gin.HandlerFunc
	rateLimit       gin.HandlerFunc
	idempotency     gin.HandlerFunc
	adminMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public, rate limited per client IP)
		auth := v1.Group("/auth")
		{
			public := auth.Group("", d.rateLimit)
			public.POST("/signup", d.authHandler.Signup)
			public.POST("/signin", d.authHandler.Signin)
			public.GET("/verify-email/:token", d.authHandler.VerifyEmail)
			public.POST("/resend-verification", d.authHandler.ResendVerification)
			public.POST("/forgot-password", d.authHandler.ForgotPassword)
			public.GET("/reset-password/:token", d.authHandler.ValidateResetToken)
			public.POST("/reset-password/:token", d.authHandler.ResetPassword)
			public.GET("/session-expiry", d.authHandler.GetSessionExpiry)

			auth.GET("/profile", d.authMiddleware, d.authHandler.GetProfile)
			auth.PUT("/profile", d.authMiddleware, d.authHandler.UpdateProfile)
			auth.POST("/change-password", d.authMiddleware, d.authHandler.ChangePassword)
		}

		// Package routes (protected)
		packages := v1.Group("/packages")
		packages.Use(d.authMiddleware)
		{
			packages.POST("", d.packageHandler.CreatePackage)
			packages.GET("", d.packageHandler.ListPackages)
			packages.GET("/:id", d.packageHandler.GetPackage)
			packages.PUT("/:id", d.packageHandler.UpdatePackage)
			packages.DELETE("/:id", d.packageHandler.DeletePackage)
			packages.POST("/:id/pay", d.idempotency, d.paymentHandler.InitiatePayment)
		}

		v1.GET("/payments/verify", d.authMiddleware, d.paymentHandler.VerifyPayment)

		// Gateway callbacks (signature checked)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/paystack", d.paymentHandler.PaystackWebhook)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.adminMiddleware)
		{
			admin.GET("/accounts", d.adminHandler.ListAccounts)
			admin.POST("/accounts/:id/verify", d.adminHandler.VerifyAccount)
			admin.GET("/packages", d.packageHandler.ListAllPackages)
			admin.POST("/test-email", d.adminHandler.SendTestEmail)
		}
	}
}
