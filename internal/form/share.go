package form

import (
	"errors"
	"time"

	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/auth"
	"research-hub-api/internal/util"

	"gorm.io/gorm"
)

// ShareFormWithUser creates a targeted share. Only the form's creator or an
// admin may share; the target must be a real user.
func (s *FormService) ShareFormWithUser(formID uint, req ShareFormRequest, p access.Principal) (*FormShare, error) {
	f, err := s.getForm(formID)
	if err != nil {
		return nil, err
	}
	if p.Role != access.RoleAdmin && p.UserID != f.CreatorID {
		return nil, apperrors.NewAuth("only the form creator or an admin may share this form")
	}

	var count int64
	if err := s.DB.Model(&auth.User{}).Where("id = ?", req.UserID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.NewNotFound("user")
	}

	targetID := req.UserID
	share := FormShare{
		FormID:         formID,
		ShareType:      ShareTypeInternal,
		SharedWithID:   &targetID,
		CanCollect:     req.CanCollect,
		CanExport:      req.CanExport,
		MaxSubmissions: req.MaxSubmissions,
		ExpiresAt:      req.ExpiresAt,
		CreatedByID:    p.UserID,
	}
	if err := s.DB.Create(&share).Error; err != nil {
		return nil, err
	}

	s.log("INFO", "FORM_SHARE", "form shared with user", &p.UserID, &formID,
		map[string]any{"shared_with": req.UserID})
	return &share, nil
}

// CreatePublicShareLink mints an unguessable token, stores it on an EXTERNAL
// share row and flips the form public, both inside one transaction.
func (s *FormService) CreatePublicShareLink(formID uint, req PublicShareRequest, p access.Principal) (*PublicShareLink, error) {
	f, err := s.getForm(formID)
	if err != nil {
		return nil, err
	}
	if p.Role != access.RoleAdmin && p.UserID != f.CreatorID {
		return nil, apperrors.NewAuth("only the form creator or an admin may publish this form")
	}

	token, err := util.NewShareToken()
	if err != nil {
		return nil, err
	}

	share := FormShare{
		FormID:         formID,
		ShareType:      ShareTypeExternal,
		CanCollect:     true,
		ShareToken:     &token,
		MaxSubmissions: req.MaxSubmissions,
		ExpiresAt:      req.ExpiresAt,
		CreatedByID:    p.UserID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&share).Error; err != nil {
			return err
		}
		return tx.Model(&Form{}).Where("id = ?", formID).
			Updates(map[string]any{"is_public": true, "share_token": token}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log("INFO", "FORM_PUBLISH", "public share link created", &p.UserID, &formID, nil)

	return &PublicShareLink{
		Token:    token,
		ShareURL: s.CFG.ShareBaseURL + "/forms/public/" + token,
		Share:    &share,
	}, nil
}

// ResolvePublicToken validates a public token and returns the form plus what
// the anonymous caller may do with it. Expired links and exhausted ceilings
// surface as validation errors so callers can show a reason; an unknown token
// is simply not found.
func (s *FormService) ResolvePublicToken(token string) (*PublicFormAccess, error) {
	var share FormShare
	err := s.DB.
		Where("share_token = ? AND share_type = ?", token, ShareTypeExternal).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("share link")
		}
		return nil, err
	}

	now := time.Now()
	if share.ExpiresAt != nil && !share.ExpiresAt.After(now) {
		return nil, apperrors.NewValidation("share link has expired")
	}

	var remaining *int
	if share.MaxSubmissions != nil {
		var used int64
		err := s.DB.Model(&FormResponse{}).
			Where("form_id = ? AND collector_type IN ?", share.FormID,
				[]string{CollectorPublic, CollectorPublicOffline}).
			Count(&used).Error
		if err != nil {
			return nil, err
		}
		if used >= int64(*share.MaxSubmissions) {
			return nil, apperrors.NewValidation("share link submission limit reached")
		}
		left := *share.MaxSubmissions - int(used)
		remaining = &left
	}

	if err := s.DB.Model(&FormShare{}).Where("id = ?", share.ID).
		Update("last_accessed", now).Error; err != nil {
		return nil, err
	}
	share.LastAccessed = &now

	f, err := s.getForm(share.FormID)
	if err != nil {
		return nil, err
	}

	return &PublicFormAccess{
		Form:                 f,
		Share:                &share,
		CanCollect:           share.CanCollect,
		RemainingSubmissions: remaining,
	}, nil
}
