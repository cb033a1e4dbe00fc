package handler

import (
	"net/http"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/gin-gonic/gin"
)

// Login returns the caller's account, creating it with fresh custody keys on
// first use.
func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.service.Account.Login(c.Request.Context(), input.Principal)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"account": account,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	principal := c.Query("principal")
	if principal == "" {
		newErrorResponse(c, http.StatusBadRequest, "principal is required")
		return
	}
	account, err := h.service.Account.GetAccount(c.Request.Context(), principal)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"account": account,
	})
}
