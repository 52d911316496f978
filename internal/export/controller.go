package export

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *ExportService
}

func (ec *ExportController) ExportResponses(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	contentType, filename, data, err := ec.ExportService.ExportFormResponses(
		uint(n), c.Query("format"), middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
