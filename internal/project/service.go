package project

import (
	"errors"

	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"

	"gorm.io/gorm"
)

type ProjectService struct {
	DB *gorm.DB
}

// CreateProject stores the project and enrolls the creator as an active
// participant carrying their platform role.
func (s *ProjectService) CreateProject(req CreateProjectRequest, p access.Principal) (*Project, error) {
	proj := Project{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   p.UserID,
		IsActive:    true,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proj).Error; err != nil {
			return err
		}
		participant := ProjectParticipant{
			ProjectID: proj.ID,
			UserID:    p.UserID,
			Role:      string(p.Role),
			IsActive:  true,
		}
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, err
	}

	return &proj, nil
}

func (s *ProjectService) GetProject(id uint) (*Project, error) {
	var proj Project
	if err := s.DB.First(&proj, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project")
		}
		return nil, err
	}
	return &proj, nil
}

// ListProjectsForUser returns projects the user created or actively
// participates in. Admins see everything.
func (s *ProjectService) ListProjectsForUser(p access.Principal) ([]Project, error) {
	var projects []Project

	q := s.DB.Model(&Project{}).Order("projects.id asc")
	if p.Role != access.RoleAdmin {
		q = q.
			Joins("LEFT JOIN project_participants pp ON pp.project_id = projects.id AND pp.user_id = ? AND pp.is_active = ?", p.UserID, true).
			Where("projects.creator_id = ? OR pp.id IS NOT NULL", p.UserID).
			Distinct()
	}

	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateActivity adds an activity to a project. Project creator or admin only.
func (s *ProjectService) CreateActivity(projectID uint, req CreateActivityRequest, p access.Principal) (*Activity, error) {
	proj, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if p.Role != access.RoleAdmin && p.UserID != proj.CreatorID {
		return nil, apperrors.NewAuth("only the project creator or an admin may add activities")
	}

	act := Activity{ProjectID: projectID, Name: req.Name}
	if err := s.DB.Create(&act).Error; err != nil {
		return nil, err
	}
	return &act, nil
}

// GetActivityWithProject loads an activity together with its owning project.
func (s *ProjectService) GetActivityWithProject(activityID uint) (*Activity, *Project, error) {
	var act Activity
	if err := s.DB.First(&act, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NewNotFound("activity")
		}
		return nil, nil, err
	}

	var proj Project
	if err := s.DB.First(&proj, act.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NewNotFound("project")
		}
		return nil, nil, err
	}

	return &act, &proj, nil
}

// AddParticipant enrolls a user. Project creator or admin only; re-adding an
// inactive participant reactivates them.
func (s *ProjectService) AddParticipant(projectID uint, req AddParticipantRequest, p access.Principal) (*ProjectParticipant, error) {
	proj, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if p.Role != access.RoleAdmin && p.UserID != proj.CreatorID {
		return nil, apperrors.NewAuth("only the project creator or an admin may manage participants")
	}

	var existing ProjectParticipant
	findErr := s.DB.Where("project_id = ? AND user_id = ?", projectID, req.UserID).First(&existing).Error
	if findErr == nil {
		existing.Role = string(access.Normalize(req.Role))
		existing.IsActive = true
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, findErr
	}

	participant := ProjectParticipant{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      string(access.Normalize(req.Role)),
		IsActive:  true,
	}
	if err := s.DB.Create(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// DeactivateParticipant flips is_active off; the row is kept for history.
func (s *ProjectService) DeactivateParticipant(projectID, userID uint, p access.Principal) error {
	proj, err := s.GetProject(projectID)
	if err != nil {
		return err
	}
	if p.Role != access.RoleAdmin && p.UserID != proj.CreatorID {
		return apperrors.NewAuth("only the project creator or an admin may manage participants")
	}

	res := s.DB.Model(&ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("participant")
	}
	return nil
}

// HasActiveParticipant reports whether the user is an active member of the
// project. Used by the access-context loader.
func (s *ProjectService) HasActiveParticipant(projectID, userID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&ProjectParticipant{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
