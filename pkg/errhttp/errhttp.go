// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/messhall/pkg/httpx"
	rationdomain "github.com/ghuser/messhall/services/ration/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, rationdomain.ErrWithdrawalNotFound),
		errors.Is(err, rationdomain.ErrBatchNotFound),
		errors.Is(err, rationdomain.ErrProductNotFound),
		errors.Is(err, rationdomain.ErrUnitNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, rationdomain.ErrInsufficientInventory),
		errors.Is(err, rationdomain.ErrBatchOverfill),
		errors.Is(err, rationdomain.ErrConcurrencyConflict):
		return http.StatusConflict // 409
	case errors.Is(err, rationdomain.ErrInvalidQuantity),
		errors.Is(err, rationdomain.ErrInvalidMenuData):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
