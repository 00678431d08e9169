package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/models"
)

// LeaseHandler serves lease endpoints.
type LeaseHandler struct {
	repo LeaseRepository
	log  *logrus.Logger
}

// NewLeaseHandler creates a LeaseHandler with the given service and logger.
func NewLeaseHandler(repo LeaseRepository, log *logrus.Logger) *LeaseHandler {
	return &LeaseHandler{repo: repo, log: log}
}

// List handles GET /api/v1/leases.
func (h *LeaseHandler) List(c *gin.Context) {
	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	filter, err := parseListFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	leases, err := h.repo.ListLeases(c.Request.Context(), ident, filter)
	if err != nil {
		respondServiceError(c, h.log, err, "lease.list")

		return
	}

	c.JSON(http.StatusOK, gin.H{"leases": leases})
}

// Get handles GET /api/v1/leases/:id.
func (h *LeaseHandler) Get(c *gin.Context) {
	leaseUUID := c.Param("id")
	if err := validatePathID(leaseUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	lease, err := h.repo.GetLease(c.Request.Context(), ident, leaseUUID)
	if err != nil {
		respondServiceError(c, h.log, err, "lease.get")

		return
	}

	c.JSON(http.StatusOK, lease)
}

// Create handles POST /api/v1/leases.
func (h *LeaseHandler) Create(c *gin.Context) {
	var req models.CreateLeaseRequest
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

	lease, err := h.repo.CreateLease(c.Request.Context(), ident, req)
	if err != nil {
		respondServiceError(c, h.log, err, "lease.create")

		return
	}

	c.JSON(http.StatusCreated, lease)
}

// Delete handles DELETE /api/v1/leases/:id.
func (h *LeaseHandler) Delete(c *gin.Context) {
	leaseUUID := c.Param("id")
	if err := validatePathID(leaseUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteLease(c.Request.Context(), ident, leaseUUID); err != nil {
		respondServiceError(c, h.log, err, "lease.delete")

		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
