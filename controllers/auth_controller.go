// File: /controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zyncchat-api/middleware"
	"zyncchat-api/services"
	"zyncchat-api/utils"
)

type AuthController struct {
	auth         *services.AuthService
	profile      *services.ProfileService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthController(auth *services.AuthService, profile *services.ProfileService, cookieSecure bool, logger *zap.Logger) *AuthController {
	return &AuthController{
		auth:         auth,
		profile:      profile,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnboardRequest struct {
	FullName         *string `json:"fullName"`
	Bio              *string `json:"bio"`
	NativeLanguage   string  `json:"nativeLanguage"`
	LearningLanguage string  `json:"learningLanguage"`
	Location         *string `json:"location"`
	ProfilePic       *string `json:"profilePic"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	ac.setSessionCookie(c, result.Token)
	utils.SendCreated(c, "User registered successfully", gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ac.setSessionCookie(c, result.Token)
	utils.SendSuccess(c, "Logged in successfully", gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

// Logout clears the cookie and revokes the presented token until it expires.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		ac.logger.Warn("logout: revoke token", zap.Error(err))
	}

	ac.clearSessionCookie(c)
	utils.SendSuccess(c, "Logged out successfully", nil)
}

func (ac *AuthController) Me(c *gin.Context) {
	utils.SendSuccess(c, "", gin.H{"user": middleware.CurrentUser(c)})
}

func (ac *AuthController) Onboard(c *gin.Context) {
	var req OnboardRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.profile.CompleteOnboarding(c.Request.Context(), middleware.CurrentUserID(c), services.OnboardingInput{
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		FullName:         req.FullName,
		Bio:              req.Bio,
		Location:         req.Location,
		ProfilePic:       req.ProfilePic,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "Onboarding completed successfully", gin.H{"user": user})
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ac.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "If that email exists, a reset link has been sent", nil)
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ac.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "Password reset successful", nil)
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(ac.auth.SessionTTL().Seconds()), "/", "", ac.cookieSecure, true)
}

func (ac *AuthController) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.cookieSecure, true)
}
