package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"research-hub-api/config"
	"research-hub-api/internal/access"
	"research-hub-api/internal/auth"
	"research-hub-api/internal/logs"
	"research-hub-api/internal/project"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&auth.User{},
		&project.Project{}, &project.Activity{}, &project.ProjectParticipant{},
		&Form{}, &FormShare{}, &FormResponse{}, &ResponsePhoto{}, &FormComment{}, &OfflineSync{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

type mockLogService struct {
	entries []logs.SystemLog
}

func (m *mockLogService) Log(entry logs.SystemLog, metadata interface{}) error {
	m.entries = append(m.entries, entry)
	return nil
}

func newTestService(t *testing.T) *FormService {
	t.Helper()

	origCleanup := deleteGCSPrefixHook
	deleteGCSPrefixHook = func(bucket, prefix string) error { return nil }
	t.Cleanup(func() { deleteGCSPrefixHook = origCleanup })

	return &FormService{
		DB:   newTestDB(t),
		CFG:  &config.Config{GCSBucket: "test-bucket", ShareBaseURL: "https://hub.example.org"},
		Logs: &mockLogService{},
	}
}

func uitoa(n uint) string { return strconv.FormatUint(uint64(n), 10) }

func researcher(userID uint) access.Principal {
	return access.Principal{UserID: userID, Role: access.RoleResearcher}
}

func adminPrincipal(userID uint) access.Principal {
	return access.Principal{UserID: userID, Role: access.RoleAdmin}
}

// fieldSchema builds a minimal one-field schema document.
func fieldSchema(fields ...FormField) json.RawMessage {
	b, _ := json.Marshal(FormSchema{Fields: fields})
	return b
}

func textField(key string) FormField {
	return FormField{Key: key, Label: key, Type: FieldText, Required: true}
}

func seedUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	u := auth.User{
		ID:        id,
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", id),
		Email:     fmt.Sprintf("user%d@example.org", id),
		Password:  "x",
		Role:      "RESEARCHER",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func createTestForm(t *testing.T, svc *FormService, creator access.Principal) *Form {
	t.Helper()
	f, err := svc.CreateForm(CreateFormRequest{
		Title:  "Site Survey",
		Schema: fieldSchema(textField("site_name")),
	}, creator)
	if err != nil {
		t.Fatalf("CreateForm err: %v", err)
	}
	return f
}
