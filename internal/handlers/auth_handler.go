package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/response"
	"alfredoptarigan/ats-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "Account created successfully", result)
}

func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Login successful", result)
}

func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	recruiter, err := h.authService.Profile(c.UserContext(), recruiterID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Profile retrieved successfully", recruiter)
}

func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	recruiter, err := h.authService.UpdateProfile(c.UserContext(), recruiterID, req)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Profile updated successfully", recruiter)
}

func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	recruiterID, err := currentRecruiter(c)
	if err != nil {
		return err
	}

	result, err := h.authService.Refresh(c.UserContext(), recruiterID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Token refreshed successfully", result)
}
