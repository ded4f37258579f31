package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lead-management-server/internal/config"
	"lead-management-server/internal/models"
	"lead-management-server/internal/services"
	"lead-management-server/internal/utils"
)

type UserHandler struct {
	auth   *services.AuthService
	cookie config.CookieOptions
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func NewUserHandler(auth *services.AuthService, cookie config.CookieOptions) *UserHandler {
	return &UserHandler{auth: auth, cookie: cookie}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.RespondCreated(c, "user registered successfully", gin.H{"user": user, "token": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.RespondOK(c, "user logged in successfully", gin.H{"user": user, "token": token})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	utils.RespondOK(c, "user logged out successfully", nil)
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.auth.GetProfile(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "user details fetched successfully", gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "user details updated successfully", gin.H{"user": user})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), c.GetString("user_id"), req.OldPassword, req.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "password changed successfully", nil)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		utils.RespondError(c, utils.NewValidationError("email is required"))
		return
	}

	result, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, result.Message, gin.H{"data": result})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "password reset successfully", nil)
}

func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.auth.DeleteProfile(c.Request.Context(), c.GetString("user_id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	h.clearSessionCookie(c)
	utils.RespondOK(c, "user profile deleted successfully", nil)
}

func (h *UserHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *UserHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
