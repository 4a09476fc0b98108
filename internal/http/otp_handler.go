package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/service"
)

// OTPHandler holds dependencies for the /otp endpoints. The same three
// handlers serve both flows; the purpose is fixed per route group.
type OTPHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	otpServ  *service.OTPService
	jwtServ  *service.JWTService
}

func NewOTPHandler(logger *zap.Logger, authServ *service.AuthService, otpServ *service.OTPService, jwtServ *service.JWTService) *OTPHandler {
	return &OTPHandler{
		logger:   logger,
		authServ: authServ,
		otpServ:  otpServ,
		jwtServ:  jwtServ,
	}
}

// SendOTP handles POST /otp/{flow}/send-otp.
func (h *OTPHandler) SendOTP(purpose domain.OTPPurpose) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := h.authServ.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			h.logger.Error("send otp user lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send otp"})
			return
		}

		if err := h.otpServ.Issue(c.Request.Context(), user, purpose); err != nil {
			if errors.Is(err, service.ErrResendCooldown) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "please wait before requesting another otp"})
				return
			}
			h.logger.Error("issue otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send otp"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "otp sent"})
	}
}

// VerifyOTP handles POST /otp/{flow}/verify-otp.
func (h *OTPHandler) VerifyOTP(purpose domain.OTPPurpose) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
			OTP   string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := h.authServ.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			h.logger.Error("verify otp user lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
			return
		}

		err = h.otpServ.Verify(c.Request.Context(), user.ID, purpose, req.OTP)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"status": "OTP_VERIFIED"})
		case errors.Is(err, service.ErrNoActiveOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no active otp found"})
		case errors.Is(err, service.ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "otp expired"})
		case errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, request a new otp"})
		case errors.Is(err, service.ErrOTPInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid otp"})
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
		}
	}
}

// ResetPassword handles POST /otp/{flow}/reset-password. The first-login
// flow also clears the must-reset flag. A token is issued so the client
// is logged in right after the reset.
func (h *OTPHandler) ResetPassword(purpose domain.OTPPurpose) gin.HandlerFunc {
	clearMustReset := purpose == domain.OTPPurposeFirstLogin
	return func(c *gin.Context) {
		var req struct {
			Email       string `json:"email" binding:"required,email"`
			NewPassword string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := h.authServ.ResetPassword(c.Request.Context(), req.Email, req.NewPassword, clearMustReset)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			h.logger.Error("reset password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset password"})
			return
		}

		pair, err := h.jwtServ.GeneratePair(user)
		if err != nil {
			h.logger.Error("jwt issue failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        "PASSWORD_RESET_SUCCESS",
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
		})
	}
}
