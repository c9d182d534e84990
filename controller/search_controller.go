// api/controller/search_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/sift/api/engine"
	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/util"
)

type SearchController struct {
	orchestrator engine.IOrchestrator
}

func NewSearchController(orchestrator engine.IOrchestrator) *SearchController {
	return &SearchController{
		orchestrator: orchestrator,
	}
}

// RegisterRoutes registers the API routes
func (sc *SearchController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/search", sc.Search)
}

type searchRequestBody struct {
	Query string `json:"query"`
}

// Search endpoint: runs the full filter pipeline and returns filtered results,
// an explicit denial, or a generic failure. Internal errors never reach the
// response body.
func (sc *SearchController) Search(c *gin.Context) {
	var body searchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search request", sift_errors.ErrInvalidSearchRequest)
		return
	}

	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sift_errors.ErrUnauthorized)
		return
	}

	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	request := model.AccessRequest{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Query:     body.Query,
	}

	response := sc.orchestrator.EvaluateAndSearch(c.Request.Context(), request)

	switch {
	case response.Error != "":
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search request failed"})
	case !response.Allowed:
		c.JSON(http.StatusForbidden, response)
	default:
		c.JSON(http.StatusOK, response)
	}
}
