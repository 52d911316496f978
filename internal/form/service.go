package form

import (
	"errors"
	"fmt"
	"time"

	"research-hub-api/config"
	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/logs"
	"research-hub-api/internal/project"
	"research-hub-api/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// deleteGCSPrefixHook lets tests intercept bucket cleanup.
var deleteGCSPrefixHook = util.DeleteGCSPrefix

type FormService struct {
	DB   *gorm.DB
	CFG  *config.Config
	Logs LogServicePort
}

func (s *FormService) log(level, action, message string, userID, formID *uint, metadata any) {
	if s.Logs == nil {
		return
	}
	_ = s.Logs.Log(logs.SystemLog{
		Level:   level,
		Service: "form",
		UserID:  userID,
		Action:  action,
		Message: message,
		FormID:  formID,
	}, metadata)
}

func (s *FormService) getForm(id uint) (*Form, error) {
	var f Form
	if err := s.DB.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("form")
		}
		return nil, err
	}
	return &f, nil
}

// formContext assembles everything the evaluator needs for one form/principal
// pair: project linkage, participant status and the principal's targeted
// shares. Multiple unexpired shares merge into one grant with OR'd flags.
func (s *FormService) formContext(f *Form, p access.Principal) (access.FormContext, error) {
	fc := access.FormContext{CreatorID: f.CreatorID}

	if f.ActivityID != nil {
		var act project.Activity
		if err := s.DB.First(&act, *f.ActivityID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fc, err
			}
		} else {
			var proj project.Project
			if err := s.DB.First(&proj, act.ProjectID).Error; err == nil {
				creatorID := proj.CreatorID
				fc.ProjectCreatorID = &creatorID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fc, err
			}

			var count int64
			err := s.DB.Model(&project.ProjectParticipant{}).
				Where("project_id = ? AND user_id = ? AND is_active = ?", act.ProjectID, p.UserID, true).
				Count(&count).Error
			if err != nil {
				return fc, err
			}
			fc.IsActiveParticipant = count > 0
		}
	}

	var shares []FormShare
	err := s.DB.
		Where("form_id = ? AND share_type = ? AND shared_with_id = ?", f.ID, ShareTypeInternal, p.UserID).
		Find(&shares).Error
	if err != nil {
		return fc, err
	}

	now := time.Now()
	var grant *access.ShareGrant
	for _, sh := range shares {
		if sh.ExpiresAt != nil && !sh.ExpiresAt.After(now) {
			continue
		}
		if grant == nil {
			grant = &access.ShareGrant{}
		}
		grant.CanCollect = grant.CanCollect || sh.CanCollect
		grant.CanExport = grant.CanExport || sh.CanExport
	}
	fc.Share = grant

	return fc, nil
}

func (s *FormService) decisionFor(f *Form, p access.Principal) (access.Decision, error) {
	fc, err := s.formContext(f, p)
	if err != nil {
		return access.Decision{}, err
	}
	return access.Evaluate(p, fc), nil
}

// CreateForm validates the schema, checks the creator's role and project
// standing, and stores the form. The raw schema bytes go in unchanged.
// Multiple submissions are always enabled regardless of the request value.
func (s *FormService) CreateForm(req CreateFormRequest, p access.Principal) (*Form, error) {
	if !access.CanCreateForms(p.Role) {
		return nil, apperrors.NewAuth("role " + string(p.Role) + " may not create forms")
	}

	if req.ActivityID != nil {
		var act project.Activity
		if err := s.DB.First(&act, *req.ActivityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("activity")
			}
			return nil, err
		}
		var proj project.Project
		if err := s.DB.First(&proj, act.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("project")
			}
			return nil, err
		}
		var count int64
		err := s.DB.Model(&project.ProjectParticipant{}).
			Where("project_id = ? AND user_id = ? AND is_active = ?", act.ProjectID, p.UserID, true).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if !access.CanAccessProject(p, proj.CreatorID, count > 0) {
			return nil, apperrors.NewAuth("no access to the activity's project")
		}
	}

	if _, err := ValidateFormSchema(req.Schema); err != nil {
		return nil, err
	}

	f := Form{
		Title:       req.Title,
		Description: req.Description,
		Schema:      datatypes.JSON(req.Schema),
		IsActive:    true,
		// Historical clients depend on every form accepting repeat
		// submissions, so the request flag is ignored.
		AllowMultipleSubmissions: true,
		CreatorID:                p.UserID,
		ActivityID:               req.ActivityID,
	}
	if err := s.DB.Create(&f).Error; err != nil {
		return nil, err
	}

	s.log("INFO", "FORM_CREATE", "form created", &p.UserID, &f.ID, nil)
	return &f, nil
}

// GetForm returns the form when the principal may view it. A form hidden from
// the principal reads as forbidden, not absent, so probing cannot distinguish
// the two cases from a 404.
func (s *FormService) GetForm(id uint, p access.Principal) (*Form, *access.Decision, error) {
	f, err := s.getForm(id)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.decisionFor(f, p)
	if err != nil {
		return nil, nil, err
	}
	if !d.CanView {
		return nil, nil, apperrors.NewAuth("no access to this form")
	}
	return f, &d, nil
}

// ListForms returns forms the principal created, was targeted on via an
// unexpired share, or can see through project membership. Admins see all.
func (s *FormService) ListForms(p access.Principal) ([]Form, error) {
	var forms []Form

	q := s.DB.Model(&Form{}).Order("forms.id asc")
	if p.Role != access.RoleAdmin {
		q = q.Where(
			`forms.creator_id = ?
			 OR forms.id IN (
			     SELECT fs.form_id FROM form_shares fs
			     WHERE fs.share_type = ? AND fs.shared_with_id = ?
			       AND (fs.expires_at IS NULL OR fs.expires_at > ?))
			 OR forms.activity_id IN (
			     SELECT a.id FROM activities a
			     JOIN projects pr ON pr.id = a.project_id
			     LEFT JOIN project_participants pp
			       ON pp.project_id = pr.id AND pp.user_id = ? AND pp.is_active = ?
			     WHERE (pr.creator_id = ? AND ?) OR pp.id IS NOT NULL)`,
			p.UserID, ShareTypeInternal, p.UserID, time.Now(), p.UserID, true, p.UserID,
			p.Role == access.RolePrincipalInvestigator,
		)
	}

	if err := q.Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

// UpdateForm applies partial updates. Schema replacements are validated like
// at creation; public-link state is never touched here.
func (s *FormService) UpdateForm(id uint, req UpdateFormRequest, p access.Principal) (*Form, error) {
	f, err := s.getForm(id)
	if err != nil {
		return nil, err
	}
	d, err := s.decisionFor(f, p)
	if err != nil {
		return nil, err
	}
	if !d.CanEdit {
		return nil, apperrors.NewAuth("no permission to edit this form")
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(req.Schema) > 0 {
		if _, err := ValidateFormSchema(req.Schema); err != nil {
			return nil, err
		}
		updates["schema"] = datatypes.JSON(req.Schema)
	}
	if len(updates) == 0 {
		return f, nil
	}

	if err := s.DB.Model(f).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.log("INFO", "FORM_UPDATE", "form updated", &p.UserID, &f.ID, nil)
	return s.getForm(id)
}

// DeleteForm removes the form and every dependent row in one transaction:
// photos, responses, comments, shares, then the form itself. Editors who are
// neither creator nor admin are blocked once the form has collected data.
func (s *FormService) DeleteForm(id uint, p access.Principal) error {
	f, err := s.getForm(id)
	if err != nil {
		return err
	}
	d, err := s.decisionFor(f, p)
	if err != nil {
		return err
	}
	if !d.CanDelete {
		return apperrors.NewAuth("no permission to delete this form")
	}

	if p.Role != access.RoleAdmin && p.UserID != f.CreatorID {
		var responses, comments int64
		if err := s.DB.Model(&FormResponse{}).Where("form_id = ?", id).Count(&responses).Error; err != nil {
			return err
		}
		if err := s.DB.Model(&FormComment{}).Where("form_id = ?", id).Count(&comments).Error; err != nil {
			return err
		}
		if responses > 0 || comments > 0 {
			return apperrors.NewAuth("only the creator or an admin may delete a form with collected data")
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("response_id IN (SELECT id FROM form_responses WHERE form_id = ?)", id).
			Delete(&ResponsePhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&FormResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&FormComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&FormShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Form{}, id).Error
	})
	if err != nil {
		return err
	}

	// Bucket objects are removed outside the transaction; a cleanup failure
	// must not resurrect the rows.
	if s.CFG != nil && s.CFG.GCSBucket != "" {
		if err := deleteGCSPrefixHook(s.CFG.GCSBucket, fmt.Sprintf("forms/%d", id)); err != nil {
			s.log("WARN", "PHOTO_CLEANUP", "bucket cleanup failed: "+err.Error(), &p.UserID, &id, nil)
		}
	}

	s.log("INFO", "FORM_DELETE", "form and dependents deleted", &p.UserID, &id, nil)
	return nil
}

// ListResponses returns a form's responses with their photos for anyone who
// may view the form.
func (s *FormService) ListResponses(formID uint, p access.Principal) ([]FormResponse, map[uint][]ResponsePhoto, error) {
	if _, _, err := s.GetForm(formID, p); err != nil {
		return nil, nil, err
	}

	var responses []FormResponse
	if err := s.DB.Where("form_id = ?", formID).Order("id asc").Find(&responses).Error; err != nil {
		return nil, nil, err
	}

	ids := make([]uint, 0, len(responses))
	for _, r := range responses {
		ids = append(ids, r.ID)
	}

	photos := map[uint][]ResponsePhoto{}
	if len(ids) > 0 {
		var rows []ResponsePhoto
		if err := s.DB.Where("response_id IN ?", ids).Order("id asc").Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, ph := range rows {
			photos[ph.ResponseID] = append(photos[ph.ResponseID], ph)
		}
	}

	return responses, photos, nil
}

func (s *FormService) AddComment(formID uint, req AddCommentRequest, p access.Principal) (*FormComment, error) {
	if _, _, err := s.GetForm(formID, p); err != nil {
		return nil, err
	}

	comment := FormComment{
		FormID:  formID,
		UserID:  p.UserID,
		Content: req.Content,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *FormService) ListComments(formID uint, p access.Principal) ([]FormComment, error) {
	if _, _, err := s.GetForm(formID, p); err != nil {
		return nil, err
	}

	var comments []FormComment
	if err := s.DB.Where("form_id = ?", formID).Order("id asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
