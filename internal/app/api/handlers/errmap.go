package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/response"
)

// writeError maps a service error onto the HTTP status and envelope code for
// its category. Unrecognized errors become a 500 without leaking detail.
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, response.ErrorT[any](response.APIResponseCodeConflict, err.Error()))
	case apperr.IsIntegrity(err):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorT[any](response.APIResponseCodeUnprocessable, err.Error()))
	case apperr.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "internal error"))
	}
}
