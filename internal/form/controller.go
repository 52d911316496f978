package form

import (
	"net/http"
	"strconv"
	"strings"

	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type FormController struct {
	FormService FormServicePort
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

func (fc *FormController) CreateForm(c *gin.Context) {
	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fc.FormService.CreateForm(req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (fc *FormController) ListForms(c *gin.Context) {
	forms, err := fc.FormService.ListForms(middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

func (fc *FormController) GetForm(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	f, decision, err := fc.FormService.GetForm(id, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": f, "permissions": decision})
}

func (fc *FormController) UpdateForm(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fc.FormService.UpdateForm(id, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (fc *FormController) DeleteForm(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := fc.FormService.DeleteForm(id, middlewares.PrincipalFromContext(c)); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (fc *FormController) ShareForm(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req ShareFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	share, err := fc.FormService.ShareFormWithUser(id, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

func (fc *FormController) CreatePublicLink(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req PublicShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := fc.FormService.CreatePublicShareLink(id, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (fc *FormController) SubmitResponse(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := middlewares.PrincipalFromContext(c)
	response, err := fc.FormService.SubmitFormResponse(id, req, CollectorContext{
		Principal: &p,
		Info:      req.CollectorInfo,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (fc *FormController) ListResponses(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	responses, photos, err := fc.FormService.ListResponses(id, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	type responseWithPhotos struct {
		FormResponse
		Photos []ResponsePhoto `json:"photos"`
	}
	out := make([]responseWithPhotos, 0, len(responses))
	for _, r := range responses {
		ph := photos[r.ID]
		if ph == nil {
			ph = []ResponsePhoto{}
		}
		out = append(out, responseWithPhotos{FormResponse: r, Photos: ph})
	}
	c.JSON(http.StatusOK, out)
}

func (fc *FormController) AddComment(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := fc.FormService.AddComment(id, req, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (fc *FormController) ListComments(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	comments, err := fc.FormService.ListComments(id, middlewares.PrincipalFromContext(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// GetPublicForm serves the anonymous form view behind a share token.
func (fc *FormController) GetPublicForm(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}

	pub, err := fc.FormService.ResolvePublicToken(token)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

// SubmitPublicResponse accepts an anonymous submission. The token is resolved
// right here so expiry and ceilings are re-checked at submit time, and the
// resolved share travels into the collector as typed context.
func (fc *FormController) SubmitPublicResponse(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}

	pub, err := fc.FormService.ResolvePublicToken(token)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !pub.CanCollect {
		apperrors.Respond(c, apperrors.NewAuth("share link does not permit submissions"))
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info := req.CollectorInfo
	if info == nil {
		info = &CollectorInfo{Type: "public_link"}
	}

	response, err := fc.FormService.SubmitFormResponse(pub.Form.ID, req, CollectorContext{
		Share: pub.Share,
		Info:  info,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (fc *FormController) StoreOffline(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req StoreOfflineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := fc.FormService.StoreOfflineData(id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (fc *FormController) SyncDevice(c *gin.Context) {
	deviceID := strings.TrimSpace(c.Param("deviceId"))
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deviceId"})
		return
	}

	summary, err := fc.FormService.SyncOfflineData(deviceID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
