package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zyncchat-api/middleware"
	"zyncchat-api/services"
	"zyncchat-api/utils"
)

type UserController struct {
	profile *services.ProfileService
}

func NewUserController(profile *services.ProfileService) *UserController {
	return &UserController{profile: profile}
}

// GetRecommendations answers a bare array of onboarded, non-friend users.
func (uc *UserController) GetRecommendations(c *gin.Context) {
	users, err := uc.profile.Recommendations(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type languagesRequest struct {
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
}

// SetLanguages is the older onboarding form that only carries the language pair.
func (uc *UserController) SetLanguages(c *gin.Context) {
	var req languagesRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.profile.CompleteOnboarding(c.Request.Context(), middleware.CurrentUserID(c), services.OnboardingInput{
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "Onboarding completed successfully", gin.H{"user": user})
}
