package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend-api/internal/middleware"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
	"store-backend-api/internal/services"
)

// ProfileHandler handles profile administration HTTP requests
type ProfileHandler struct {
	profileService services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// @Summary List profiles
// @Description List user profiles with email/role filters and pagination
// @Tags usuarios
// @Accept json
// @Produce json
// @Param email query string false "Partial email (case-insensitive)"
// @Param role query string false "Exact role" Enums(admin, user)
// @Param sort query string false "Sort order" Enums(newest, role_asc, role_desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.ProfileList
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /usuarios [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	filters := &repositories.ProfileFilters{
		Email: c.Query("email"),
		Sort:  c.Query("sort"),
	}

	if role := c.Query("role"); role != "" {
		r := models.Role(role)
		filters.Role = &r
	}
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			filters.Page = val
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			filters.Limit = val
		}
	}
	filters.Normalize()

	result, err := h.profileService.ListProfiles(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "Failed to list profiles")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Update a profile
// @Description Update a profile's email and/or role; at least one is required
// @Tags usuarios
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param profile body services.ProfileUpdateRequest true "Fields to update"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /usuarios/{id} [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	req.ID = id

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Delete a profile
// @Description Delete a profile; admins cannot delete their own profile
// @Tags usuarios
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Success 204 "Profile deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /usuarios/{id} [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	currentUserID, _ := middleware.GetUserID(c)

	if err := h.profileService.DeleteProfile(c.Request.Context(), id, currentUserID); err != nil {
		respondError(c, err, "Failed to delete profile")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseProfileID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "Invalid request", "Profile ID is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "Invalid profile ID", "Profile ID must be a valid UUID")
		return "", false
	}
	return id, true
}
