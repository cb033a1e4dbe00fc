package handler

import (
	"net/http"
	"strconv"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// SubmitClaim queues a reward claim for a position. Progress is read back with GetClaim.
func (h *Handler) SubmitClaim(c *gin.Context) {
	var input models.ClaimInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	claim, err := h.service.Claim.Submit(c.Request.Context(), middleware.Principal(c), input.PositionID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, map[string]interface{}{
		"claim": claim,
	})
}

func (h *Handler) GetClaims(c *gin.Context) {
	claims, err := h.service.Claim.List(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"claims": claims,
	})
}

func (h *Handler) GetClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}
	claim, err := h.service.Claim.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"claim": claim,
	})
}

func (h *Handler) CheckClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}
	claim, err := h.service.Claim.Check(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"claim": claim,
	})
}

func claimID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid claim id")
		return 0, false
	}
	return id, true
}
