package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/models"
)

// OfferHandler serves offer endpoints, including the claim operation.
type OfferHandler struct {
	repo OfferRepository
	log  *logrus.Logger
}

// NewOfferHandler creates an OfferHandler with the given service and logger.
func NewOfferHandler(repo OfferRepository, log *logrus.Logger) *OfferHandler {
	return &OfferHandler{repo: repo, log: log}
}

// List handles GET /api/v1/offers.
func (h *OfferHandler) List(c *gin.Context) {
	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	filter, err := parseListFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	offers, err := h.repo.ListOffers(c.Request.Context(), ident, filter)
	if err != nil {
		respondServiceError(c, h.log, err, "offer.list")

		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// Get handles GET /api/v1/offers/:id.
func (h *OfferHandler) Get(c *gin.Context) {
	offerUUID := c.Param("id")
	if err := validatePathID(offerUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	offer, err := h.repo.GetOffer(c.Request.Context(), ident, offerUUID)
	if err != nil {
		respondServiceError(c, h.log, err, "offer.get")

		return
	}

	c.JSON(http.StatusOK, offer)
}

// Create handles POST /api/v1/offers.
func (h *OfferHandler) Create(c *gin.Context) {
	var req models.CreateOfferRequest
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

	offer, err := h.repo.CreateOffer(c.Request.Context(), ident, req)
	if err != nil {
		respondServiceError(c, h.log, err, "offer.create")

		return
	}

	c.JSON(http.StatusCreated, offer)
}

// Delete handles DELETE /api/v1/offers/:id.
func (h *OfferHandler) Delete(c *gin.Context) {
	offerUUID := c.Param("id")
	if err := validatePathID(offerUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ident, ok := getIdentity(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteOffer(c.Request.Context(), ident, offerUUID); err != nil {
		respondServiceError(c, h.log, err, "offer.delete")

		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Claim handles POST /api/v1/offers/:id/claim.
func (h *OfferHandler) Claim(c *gin.Context) {
	offerUUID := c.Param("id")
	if err := validatePathID(offerUUID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.ClaimRequest
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

	lease, err := h.repo.Claim(c.Request.Context(), ident, offerUUID, req)
	if err != nil {
		respondServiceError(c, h.log, err, "offer.claim")

		return
	}

	c.JSON(http.StatusCreated, lease)
}
