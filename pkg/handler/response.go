package handler

import (
	"net/http"

	"github.com/Snassy-icp/app-sneeddao-sub001/internal/claim"
	"github.com/Snassy-icp/app-sneeddao-sub001/internal/funds"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Error struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.WithFields(logrus.Fields{"path": c.FullPath(), "status": statusCode}).Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

// abortWithError answers with the status code matching err.
func abortWithError(c *gin.Context, err error) {
	newErrorResponse(c, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	var failed *claim.ClaimFailedError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, funds.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, funds.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrClaimNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, claim.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, claim.ErrPollingTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrShuttingDown):
		return http.StatusServiceUnavailable
	case errors.As(err, &failed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}
