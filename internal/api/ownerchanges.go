package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/models"
)

// OwnerChangeHandler serves owner change endpoints.
type OwnerChangeHandler struct {
	repo OwnerChangeRepository
	log  *logrus.Logger
}

// NewOwnerChangeHandler creates an OwnerChangeHandler with the given service and logger.
func NewOwnerChangeHandler(repo OwnerChangeRepository, log *logrus.Logger) *OwnerChangeHandler {
	return &OwnerChangeHandler{repo: repo, log: log}
}

// List handles GET /api/v1/owner-changes.
func (h *OwnerChangeHandler) List(c *gin.Context) {
	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	filter, err := parseListFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	changes, err := h.repo.ListOwnerChanges(c.Request.Context(), ident, filter)
	if err != nil {
		respondServiceError(c, h.log, err, "owner_change.list")

		return
	}

	c.JSON(http.StatusOK, gin.H{"owner_changes": changes})
}

// Get handles GET /api/v1/owner-changes/:id.
func (h *OwnerChangeHandler) Get(c *gin.Context) {
	changeUUID := c.Param("id")
	if err := validatePathID(changeUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	change, err := h.repo.GetOwnerChange(c.Request.Context(), ident, changeUUID)
	if err != nil {
		respondServiceError(c, h.log, err, "owner_change.get")

		return
	}

	c.JSON(http.StatusOK, change)
}

// Create handles POST /api/v1/owner-changes.
func (h *OwnerChangeHandler) Create(c *gin.Context) {
	var req models.CreateOwnerChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	change, err := h.repo.CreateOwnerChange(c.Request.Context(), ident, req)
	if err != nil {
		respondServiceError(c, h.log, err, "owner_change.create")

		return
	}

	c.JSON(http.StatusCreated, change)
}

// Delete handles DELETE /api/v1/owner-changes/:id.
func (h *OwnerChangeHandler) Delete(c *gin.Context) {
	changeUUID := c.Param("id")
	if err := validatePathID(changeUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteOwnerChange(c.Request.Context(), ident, changeUUID); err != nil {
		respondServiceError(c, h.log, err, "owner_change.delete")

		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
