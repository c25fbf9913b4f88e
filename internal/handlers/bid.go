package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/dto"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/services"
	"github.com/hmizuno/conference-review-api/internal/utils"
)

// BidHandler exposes reviewer bidding.
type BidHandler struct {
	biddingService *services.BiddingService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(biddingService *services.BiddingService) *BidHandler {
	return &BidHandler{
		biddingService: biddingService,
	}
}

// SubmitBid upserts the caller's bid for a paper.
func (h *BidHandler) SubmitBid(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type SubmitBidRequest struct {
		PaperID uint64          `json:"paper_id" binding:"required"`
		Bid     models.BidValue `json:"bid" binding:"required"`
	}

	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	bid, err := h.biddingService.SubmitBid(req.PaperID, userID, req.Bid)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

// PapersForBidding lists a conference's papers annotated with the
// caller's current bids.
func (h *BidHandler) PapersForBidding(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conferenceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	papers, total, err := h.biddingService.PapersForBidding(conferenceID, userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"papers": dto.ToBiddingPaperDTOs(papers),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
