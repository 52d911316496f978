package project

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"

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

	if err := db.AutoMigrate(&Project{}, &Activity{}, &ProjectParticipant{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

func pi(userID uint) access.Principal {
	return access.Principal{UserID: userID, Role: access.RolePrincipalInvestigator}
}

func TestCreateProject_EnrollsCreator(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	proj, err := svc.CreateProject(CreateProjectRequest{Name: "Glacier Melt"}, pi(3))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}
	if proj.CreatorID != 3 || !proj.IsActive {
		t.Fatalf("project = %+v", proj)
	}

	active, err := svc.HasActiveParticipant(proj.ID, 3)
	if err != nil {
		t.Fatalf("HasActiveParticipant err: %v", err)
	}
	if !active {
		t.Fatalf("creator should be enrolled as active participant")
	}
}

func TestCreateActivity_PermissionAndLookup(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	proj, err := svc.CreateProject(CreateProjectRequest{Name: "Glacier Melt"}, pi(3))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}

	if _, err := svc.CreateActivity(proj.ID, CreateActivityRequest{Name: "Field sampling"}, pi(99)); err == nil {
		t.Fatalf("outsider should not create activities")
	} else {
		var ae *apperrors.AuthError
		if !errors.As(err, &ae) {
			t.Fatalf("expected AuthError, got %T", err)
		}
	}

	act, err := svc.CreateActivity(proj.ID, CreateActivityRequest{Name: "Field sampling"}, pi(3))
	if err != nil {
		t.Fatalf("CreateActivity err: %v", err)
	}

	gotAct, gotProj, err := svc.GetActivityWithProject(act.ID)
	if err != nil {
		t.Fatalf("GetActivityWithProject err: %v", err)
	}
	if gotAct.ID != act.ID || gotProj.ID != proj.ID {
		t.Fatalf("activity/project mismatch: %+v / %+v", gotAct, gotProj)
	}
}

func TestGetActivityWithProject_NotFound(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	_, _, err := svc.GetActivityWithProject(12345)
	var ne *apperrors.NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAddParticipant_ReactivatesExisting(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	proj, err := svc.CreateProject(CreateProjectRequest{Name: "Glacier Melt"}, pi(3))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}

	if _, err := svc.AddParticipant(proj.ID, AddParticipantRequest{UserID: 8, Role: "RESEARCHER"}, pi(3)); err != nil {
		t.Fatalf("AddParticipant err: %v", err)
	}

	if err := svc.DeactivateParticipant(proj.ID, 8, pi(3)); err != nil {
		t.Fatalf("DeactivateParticipant err: %v", err)
	}
	active, _ := svc.HasActiveParticipant(proj.ID, 8)
	if active {
		t.Fatalf("participant should be inactive")
	}

	if _, err := svc.AddParticipant(proj.ID, AddParticipantRequest{UserID: 8, Role: "ENGINEER"}, pi(3)); err != nil {
		t.Fatalf("re-AddParticipant err: %v", err)
	}
	active, _ = svc.HasActiveParticipant(proj.ID, 8)
	if !active {
		t.Fatalf("participant should be reactivated")
	}
}

func TestDeactivateParticipant_NotFound(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	proj, err := svc.CreateProject(CreateProjectRequest{Name: "Glacier Melt"}, pi(3))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}

	err = svc.DeactivateParticipant(proj.ID, 777, pi(3))
	var ne *apperrors.NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListProjectsForUser(t *testing.T) {
	svc := &ProjectService{DB: newTestDB(t)}

	p1, err := svc.CreateProject(CreateProjectRequest{Name: "Mine"}, pi(3))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}
	p2, err := svc.CreateProject(CreateProjectRequest{Name: "Theirs"}, pi(4))
	if err != nil {
		t.Fatalf("CreateProject err: %v", err)
	}

	// user 3 sees only their own project
	got, err := svc.ListProjectsForUser(pi(3))
	if err != nil {
		t.Fatalf("ListProjectsForUser err: %v", err)
	}
	if len(got) != 1 || got[0].ID != p1.ID {
		t.Fatalf("projects = %+v", got)
	}

	// joining the other project makes it visible
	if _, err := svc.AddParticipant(p2.ID, AddParticipantRequest{UserID: 3, Role: "RESEARCHER"}, pi(4)); err != nil {
		t.Fatalf("AddParticipant err: %v", err)
	}
	got, err = svc.ListProjectsForUser(pi(3))
	if err != nil {
		t.Fatalf("ListProjectsForUser err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 projects, got %+v", got)
	}

	// admin sees everything
	admin := access.Principal{UserID: 1000, Role: access.RoleAdmin}
	got, err = svc.ListProjectsForUser(admin)
	if err != nil {
		t.Fatalf("ListProjectsForUser(admin) err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("admin should see 2 projects, got %+v", got)
	}
}
