// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/sift/api/audit"
	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	"github.com/dev-mohitbeniwal/sift/api/util"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/:userId", ac.QueryAuditTrail)
}

// QueryAuditTrail returns a user's decision records, newest first, optionally
// narrowed to one action via the ?action= query parameter.
func (ac *AuditController) QueryAuditTrail(c *gin.Context) {
	userID := c.Param("userId")
	action := c.Query("action")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit parameter", sift_errors.ErrInvalidSearchRequest)
		return
	}

	entries, err := ac.auditService.Query(c.Request.Context(), userID, action, limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit trail", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
