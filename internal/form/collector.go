package form

import (
	"encoding/json"
	"fmt"
	"time"

	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// uploadPhotoHook lets tests intercept the GCS upload.
var uploadPhotoHook = util.UploadPhotoToGCS

// CollectorContext identifies who is submitting. Exactly one path applies:
// an authenticated principal, a resolved public share, or an offline replay.
// Anonymous submissions without a resolved share are rejected.
type CollectorContext struct {
	Principal *access.Principal
	Share     *FormShare
	Offline   bool
	Info      *CollectorInfo
}

func (cc CollectorContext) collectorType() string {
	switch {
	case cc.Principal != nil:
		return CollectorUser
	case cc.Offline:
		return CollectorPublicOffline
	default:
		return CollectorPublic
	}
}

// SubmitFormResponse validates and stores one submission. Field validation is
// all-or-nothing; photo uploads are best-effort and a failed upload never
// fails the submission. When the submission arrives through a capped share
// the counter is advanced with a guarded update so concurrent submitters
// cannot exceed the ceiling.
func (s *FormService) SubmitFormResponse(formID uint, req SubmitResponseRequest, cc CollectorContext) (*FormResponse, error) {
	f, err := s.getForm(formID)
	if err != nil {
		return nil, err
	}

	switch {
	case cc.Principal != nil:
		d, err := s.decisionFor(f, *cc.Principal)
		if err != nil {
			return nil, err
		}
		if !d.CanView {
			return nil, apperrors.NewAuth("no access to this form")
		}
		if !d.CanCollect {
			return nil, apperrors.NewAuth("no permission to submit responses to this form")
		}
	case cc.Offline:
		// Device replay; trust was established when the payload was stored.
	case cc.Share != nil:
		if cc.Share.FormID != formID {
			return nil, apperrors.NewAuth("share link does not match this form")
		}
		if !cc.Share.CanCollect {
			return nil, apperrors.NewAuth("share link does not permit submissions")
		}
	default:
		return nil, apperrors.NewAuth("anonymous submissions require a share link")
	}

	if !f.IsActive {
		return nil, apperrors.NewValidation("form is not accepting submissions")
	}

	schema, err := ValidateFormSchema(f.Schema)
	if err != nil {
		return nil, err
	}
	sanitized, err := ValidateFormResponse(schema, req.Data)
	if err != nil {
		return nil, err
	}

	dataJSON, err := json.Marshal(sanitized)
	if err != nil {
		return nil, err
	}

	var infoJSON datatypes.JSON
	if cc.Info != nil {
		b, err := json.Marshal(cc.Info)
		if err != nil {
			return nil, err
		}
		infoJSON = datatypes.JSON(b)
	}

	photos := s.uploadPhotos(formID, req.Photos)

	response := FormResponse{
		FormID:        formID,
		Data:          datatypes.JSON(dataJSON),
		CollectorType: cc.collectorType(),
		CollectorInfo: infoJSON,
		IsOffline:     cc.Offline,
		SubmittedAt:   time.Now(),
	}
	if cc.Principal != nil {
		uid := cc.Principal.UserID
		response.RespondentID = &uid
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if cc.Share != nil {
			res := tx.Model(&FormShare{}).
				Where("id = ? AND (max_submissions IS NULL OR submission_count < max_submissions)", cc.Share.ID).
				Update("submission_count", gorm.Expr("submission_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.NewValidation("share link submission limit reached")
			}
		}

		if err := tx.Create(&response).Error; err != nil {
			return err
		}
		for i := range photos {
			photos[i].ResponseID = response.ID
			if err := tx.Create(&photos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log("INFO", "RESPONSE_SUBMIT", "form response stored", response.RespondentID, &formID,
		map[string]any{"collector_type": response.CollectorType, "photos": len(photos)})

	return &response, nil
}

// uploadPhotos pushes each photo to GCS and returns rows for the ones that
// made it. Failures are logged and skipped.
func (s *FormService) uploadPhotos(formID uint, inputs []PhotoInput) []ResponsePhoto {
	var bucket string
	if s.CFG != nil {
		bucket = s.CFG.GCSBucket
	}

	photos := make([]ResponsePhoto, 0, len(inputs))
	for i, in := range inputs {
		if in.DataBase64 == "" {
			continue
		}

		name := util.SanitizePart(in.Filename)
		ext := util.ExtFromFilenameOrMime(in.Filename, in.MimeType)
		objectName := fmt.Sprintf("forms/%d/responses/%d_%d_%s%s",
			formID, time.Now().UnixNano(), i+1, name, ext)

		url, size, err := uploadPhotoHook(in.DataBase64, bucket, objectName)
		if err != nil {
			s.log("WARN", "PHOTO_UPLOAD", "photo upload failed: "+err.Error(), nil, &formID,
				map[string]any{"filename": in.Filename})
			continue
		}

		width, height := 0, 0
		if data, decErr := util.DecodeBase64Image(in.DataBase64); decErr == nil {
			width, height = util.ImageDims(data)
		}

		photos = append(photos, ResponsePhoto{
			Filename:  in.Filename,
			Filepath:  url,
			MimeType:  in.MimeType,
			Size:      size,
			Width:     width,
			Height:    height,
			Caption:   in.Caption,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		})
	}
	return photos
}
