package form

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupFormRouter(t *testing.T, svc FormServicePort) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc)
	return r
}

func authCookie(t *testing.T, userID uint, role string) *http.Cookie {
	t.Helper()

	os.Setenv("JWT_SECRET", "form-test-secret")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("form-test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &http.Cookie{Name: "access_token", Value: signed}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFormRoutes_RequireAuth(t *testing.T) {
	svc := newTestService(t)
	r := setupFormRouter(t, svc)

	w := doJSON(t, r, http.MethodGet, "/api/forms", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCreateForm_Endpoint(t *testing.T) {
	svc := newTestService(t)
	r := setupFormRouter(t, svc)
	cookie := authCookie(t, 7, "RESEARCHER")

	w := doJSON(t, r, http.MethodPost, "/api/forms", map[string]any{
		"title": "Site Survey",
		"schema": map[string]any{
			"fields": []map[string]any{
				{"key": "site_name", "label": "Site", "type": "text", "required": true},
			},
		},
	}, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var created Form
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.CreatorID != 7 || !created.AllowMultipleSubmissions {
		t.Fatalf("created = %+v", created)
	}
}

func TestGetForm_Endpoint_ForbiddenForStranger(t *testing.T) {
	svc := newTestService(t)
	f := createTestForm(t, svc, researcher(7))
	r := setupFormRouter(t, svc)

	w := doJSON(t, r, http.MethodGet, "/api/forms/"+uitoa(f.ID), nil, authCookie(t, 8, "RESEARCHER"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestPublicFormFlow_Endpoint(t *testing.T) {
	svc := newTestService(t)
	f := createTestForm(t, svc, researcher(7))
	link, err := svc.CreatePublicShareLink(f.ID, PublicShareRequest{}, researcher(7))
	if err != nil {
		t.Fatalf("CreatePublicShareLink err: %v", err)
	}
	r := setupFormRouter(t, svc)

	// anonymous view, no cookie
	w := doJSON(t, r, http.MethodGet, "/api/forms/public/"+link.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("view status = %d, body=%s", w.Code, w.Body.String())
	}
	var view struct {
		Form       *Form `json:"form"`
		CanCollect bool  `json:"can_collect"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Form == nil || view.Form.ID != f.ID || !view.CanCollect {
		t.Fatalf("view = %+v", view)
	}

	// anonymous submission
	w = doJSON(t, r, http.MethodPost, "/api/forms/public/"+link.Token+"/responses", map[string]any{
		"data": map[string]any{"site_name": "Ridge A"},
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body=%s", w.Code, w.Body.String())
	}

	// unknown token
	w = doJSON(t, r, http.MethodGet, "/api/forms/public/not-a-token", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown token status = %d", w.Code)
	}
}

func TestPublicSubmit_ExpiredLink_Endpoint(t *testing.T) {
	svc := newTestService(t)
	f := createTestForm(t, svc, researcher(7))
	past := time.Now().Add(-time.Minute)
	link, err := svc.CreatePublicShareLink(f.ID, PublicShareRequest{ExpiresAt: &past}, researcher(7))
	if err != nil {
		t.Fatalf("CreatePublicShareLink err: %v", err)
	}
	r := setupFormRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/forms/public/"+link.Token+"/responses", map[string]any{
		"data": map[string]any{"site_name": "Ridge A"},
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestOfflineEndpoints(t *testing.T) {
	svc := newTestService(t)
	f := createTestForm(t, svc, researcher(7))
	r := setupFormRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/forms/"+uitoa(f.ID)+"/offline", map[string]any{
		"device_id": "tablet-1",
		"data":      map[string]any{"site_name": "Ridge A"},
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("store status = %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/sync/tablet-1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body=%s", w.Code, w.Body.String())
	}
	var summary SyncSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalProcessed != 1 || summary.Successful != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}
