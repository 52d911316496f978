package project

import (
	"net/http"
	"strconv"
	"strings"

	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	ProjectService *ProjectService
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proj, err := pc.ProjectService.CreateProject(req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, proj)
}

func (pc *ProjectController) ListProjects(c *gin.Context) {
	projects, err := pc.ProjectService.ListProjectsForUser(middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (pc *ProjectController) CreateActivity(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	act, err := pc.ProjectService.CreateActivity(projectID, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

func (pc *ProjectController) AddParticipant(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := pc.ProjectService.AddParticipant(projectID, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

func (pc *ProjectController) RemoveParticipant(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}

	if err := pc.ProjectService.DeactivateParticipant(projectID, userID, middlewares.PrincipalFromContext(c)); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
