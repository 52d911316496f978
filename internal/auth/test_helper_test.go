package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"research-hub-api/internal/logs"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique in-memory DB per test to avoid cross-test contamination
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

type mockAuthService struct {
	CreateUserFn  func(user User) (*User, error)
	GetUserFn     func(email string) (*User, error)
	GetUserByIDFn func(id uint) (*User, error)
	GetAllUsersFn func() ([]User, error)
}

func (m *mockAuthService) CreateUser(user User) (*User, error) {
	if m.CreateUserFn == nil {
		return nil, errors.New("CreateUser not implemented")
	}
	return m.CreateUserFn(user)
}

func (m *mockAuthService) GetUser(email string) (*User, error) {
	if m.GetUserFn == nil {
		return nil, errors.New("GetUser not implemented")
	}
	return m.GetUserFn(email)
}

func (m *mockAuthService) GetUserByID(id uint) (*User, error) {
	if m.GetUserByIDFn == nil {
		return nil, errors.New("GetUserByID not implemented")
	}
	return m.GetUserByIDFn(id)
}

func (m *mockAuthService) GetAllUsers() ([]User, error) {
	if m.GetAllUsersFn == nil {
		return nil, errors.New("GetAllUsers not implemented")
	}
	return m.GetAllUsersFn()
}

type mockLogService struct {
	entries []logs.SystemLog
}

func (m *mockLogService) Log(entry logs.SystemLog, metadata interface{}) error {
	m.entries = append(m.entries, entry)
	return nil
}

func setupAuthRouter(svc AuthServicePort, logSvc LogServicePort) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	controller := &AuthController{AuthService: svc, LogService: logSvc}
	r.POST("/api/auth/register", controller.Register)
	r.POST("/api/auth/login", controller.Login)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}
