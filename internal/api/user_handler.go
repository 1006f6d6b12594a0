package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest is a partial update: absent keys are left alone,
// null clears weight, height or age.
type UpdateProfileRequest struct {
	Name     domain.Optional[string]  `json:"name"`
	Email    domain.Optional[string]  `json:"email"`
	Password domain.Optional[string]  `json:"password"`
	Weight   domain.Optional[float64] `json:"weight"`
	Height   domain.Optional[float64] `json:"height"`
	Age      domain.Optional[int]     `json:"age"`
}

type PhotoURLResponse struct {
	URL string `json:"url"`
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve profile.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input or email already in use"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate(req))
	if err != nil {
		respondWithError(c, err, "Failed to update profile.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Description Multipart upload in the "photo" field. Replaces any previous photo.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "jpeg, png or webp image"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Missing, too large or unsupported file"
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /users/me/photo [put]
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxPhotoSize+1<<20)
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A photo file is required in the 'photo' field.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer file.Close()

	user, err := h.userService.UploadPhoto(
		c.Request.Context(),
		userID,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		respondWithError(c, err, "Failed to upload photo.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetPhoto godoc
// @Summary Get a download URL for the profile photo
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PhotoURLResponse
// @Failure 404 {object} gin.H "No photo"
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /users/me/photo [get]
func (h *UserHandler) GetPhoto(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	url, err := h.userService.PhotoURL(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to generate photo URL.")
		return
	}
	c.JSON(http.StatusOK, PhotoURLResponse{URL: url})
}

// DeletePhoto godoc
// @Summary Delete the profile photo
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} gin.H "No photo"
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /users/me/photo [delete]
func (h *UserHandler) DeletePhoto(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeletePhoto(c.Request.Context(), userID); err != nil {
		respondWithError(c, err, "Failed to delete photo.")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMe godoc
// @Summary Delete the current account
// @Description Removes the user with their templates, executions, goals and private exercises. Public exercises stay in the catalog.
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} gin.H "A private exercise is still used by another user"
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondWithError(c, err, "Failed to delete account.")
		return
	}
	c.Status(http.StatusNoContent)
}
