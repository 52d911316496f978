package logs

import (
	"net/http"

	"research-hub-api/internal/access"

	"github.com/gin-gonic/gin"
)

type LogController struct {
	LogService *LogService
}

// POST /api/logs/query
func (lc *LogController) QueryLogs(c *gin.Context) {
	role := access.Normalize(c.GetString("role"))
	if role != access.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin only"})
		return
	}

	var input LogFilterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, total, totalPages, err := lc.LogService.GetLogs(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":        rows,
		"total":       total,
		"total_pages": totalPages,
	})
}
