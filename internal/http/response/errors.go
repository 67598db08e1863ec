package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/strandcoach/internal/platform/apierr"
)

// Error writes err with the status and code its error class maps to.
func Error(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
