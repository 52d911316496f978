package assistant

import (
	"net/http"
	"strconv"
	"strings"

	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type AssistantController struct {
	AssistantService *AssistantService
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (ac *AssistantController) Ask(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := ac.AssistantService.SummarizeFormResponses(
		uint(n), req.Question, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
