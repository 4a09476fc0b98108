package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/service"
)

// NewRouter wires middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	otpH *OTPHandler,
	gradH *GraduateHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := JWTAuthMiddleware(jwtSvc)

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", requireAuth, authH.Me)
	auth.POST("/upload-avatar", requireAuth, authH.UploadAvatar)
	auth.DELETE("/delete-avatar", requireAuth, authH.DeleteAvatar)

	firstLogin := r.Group("/otp/first-login")
	firstLogin.POST("/send-otp", otpH.SendOTP(domain.OTPPurposeFirstLogin))
	firstLogin.POST("/verify-otp", otpH.VerifyOTP(domain.OTPPurposeFirstLogin))
	firstLogin.POST("/reset-password", otpH.ResetPassword(domain.OTPPurposeFirstLogin))

	forgot := r.Group("/otp/forgot-password")
	forgot.POST("/send-otp", otpH.SendOTP(domain.OTPPurposePasswordReset))
	forgot.POST("/verify-otp", otpH.VerifyOTP(domain.OTPPurposePasswordReset))
	forgot.POST("/reset-password", otpH.ResetPassword(domain.OTPPurposePasswordReset))

	grads := r.Group("/graduates", requireAuth)
	grads.GET("/list", gradH.List)
	grads.GET("/:id/timeline", gradH.Timeline)
	grads.GET("/:id/progress", gradH.Progress)
	grads.POST("/:id/tasks/:taskID/complete", gradH.CompleteTask)
	grads.POST("/:id/tasks/:taskID/uncomplete", gradH.UncompleteTask)

	return r
}

// zapLoggerMiddleware logs each request with zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
