package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenapp/haven-backend/internal/pkg/apierr"
)

// RespondServiceError maps a service error onto the envelope. Classified
// errors carry their own status and code; anything else is a 500 store_error.
func RespondServiceError(c *gin.Context, err error) {
	if ae, ok := apierr.From(err); ok {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, "store_error", err)
}
