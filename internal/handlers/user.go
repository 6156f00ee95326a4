package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/titoride/backend/internal/models"
	"github.com/titoride/backend/internal/repositories"
)

// UserHandler handles rider profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	uploadDir      string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, uploadDir string) *UserHandler {
	return &UserHandler{userRepository: userRepo, uploadDir: uploadDir}
}

// RegisterPublicUserRoutes registers routes that need no authentication
func (h *UserHandler) RegisterPublicUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetUserProfile)
}

// RegisterUserRoutes registers the protected profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.PUT("/users/:id", h.UpdateUserProfile)
	g.POST("/users/:id/upload-profile-picture", h.UploadProfilePicture)
}

// GetUserProfile returns a rider's public profile
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUserProfile updates the rider's own profile fields
func (h *UserHandler) UpdateUserProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if currentUserID != uint(userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to update this profile")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.BikeType != "" {
		user.BikeType = req.BikeType
	}
	if req.MTBLevel != "" {
		user.MTBLevel = req.MTBLevel
	}
	if req.EmergencyContactName != "" {
		user.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != "" {
		user.EmergencyContactPhone = req.EmergencyContactPhone
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UploadProfilePicture replaces the rider's profile image
func (h *UserHandler) UploadProfilePicture(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if currentUserID != uint(userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to update this profile")
	}

	file, err := c.FormFile("profileImage")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	imageURL, err := saveProfileImage(h.uploadDir, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store profile picture")
	}

	removeLocalProfileImage(h.uploadDir, user.ProfileImage)

	user.ProfileImage = imageURL
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"imageUrl": imageURL,
		"message":  "Profile picture uploaded successfully",
	})
}
