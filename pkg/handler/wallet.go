package handler

import (
	"net/http"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.service.Account.GetAccount(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"account": account,
	})
}

// GetBalance answers GET /api/wallet/balance?ledger=<ledger id>.
func (h *Handler) GetBalance(c *gin.Context) {
	ledger := c.Query("ledger")
	if ledger == "" {
		newErrorResponse(c, http.StatusBadRequest, "ledger is required")
		return
	}
	balance, err := h.service.Wallet.Balance(c.Request.Context(), middleware.Principal(c), ledger)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"balance": balance,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	h.service.Wallet.Refresh(middleware.Principal(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	portfolio, err := h.service.Wallet.Portfolio(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"portfolio": portfolio,
	})
}

func (h *Handler) TrackToken(c *gin.Context) {
	var input models.TrackTokenInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Account.TrackToken(c.Request.Context(), middleware.Principal(c), input.Ledger); err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"ledger": input.Ledger,
	})
}

// Quote shows how much of a payment each source would cover. Body: {"ledger":"...","amount":1000}
func (h *Handler) Quote(c *gin.Context) {
	var input models.QuoteInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.service.Wallet.Quote(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"quote": quote,
	})
}

// Pay sends a payment from the vault and the wallet. Body: {"ledger":"...","recipient":"...","amount":1000}
func (h *Handler) Pay(c *gin.Context) {
	var input models.PaymentInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := h.service.Wallet.Pay(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"payment": payment,
	})
}

func (h *Handler) GetPayments(c *gin.Context) {
	payments, err := h.service.Wallet.GetPayments(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"payments": payments,
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid payment id")
		return
	}
	payment, err := h.service.Wallet.GetPayment(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"payment": payment,
	})
}
