package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/curve"
)

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

// writeBuildError maps the error kinds of a build onto HTTP statuses.
func writeBuildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, builder.ErrPriceNotFound):
		abortWithError(c, http.StatusBadRequest, "PRICE_NOT_FOUND", err)
	case errors.Is(err, builder.ErrInstrumentNotFound):
		abortWithError(c, http.StatusNotFound, "INSTRUMENT_NOT_FOUND", err)
	case errors.Is(err, curve.ErrConfiguration):
		abortWithError(c, http.StatusBadRequest, "CONFIGURATION_ERROR", err)
	case errors.Is(err, builder.ErrConvergence):
		abortWithError(c, http.StatusUnprocessableEntity, "CONVERGENCE_FAILED", err)
	case errors.Is(err, curve.ErrNumericalDomain):
		abortWithError(c, http.StatusUnprocessableEntity, "NUMERICAL_DOMAIN", err)
	default:
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}

// recovery turns panics into the JSON error shape.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: msg},
		})
	})
}
