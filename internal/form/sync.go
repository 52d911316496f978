package form

import (
	"encoding/json"
	"strings"
	"time"

	"research-hub-api/internal/apperrors"

	"gorm.io/datatypes"
)

// StoreOfflineData stashes a raw payload captured on a device. Nothing is
// validated here; the payload is checked like any live submission when the
// device syncs.
func (s *FormService) StoreOfflineData(formID uint, req StoreOfflineRequest) (*OfflineSync, error) {
	if strings.TrimSpace(req.DeviceID) == "" {
		return nil, apperrors.NewValidation("device_id is required")
	}
	if req.Data == nil {
		return nil, apperrors.NewValidation("data is required")
	}

	b, err := json.Marshal(req.Data)
	if err != nil {
		return nil, err
	}

	row := OfflineSync{
		FormID:   formID,
		DeviceID: req.DeviceID,
		Data:     datatypes.JSON(b),
		Status:   SyncStatusPending,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, err
	}

	s.log("INFO", "OFFLINE_STORE", "offline payload stored", nil, &formID,
		map[string]any{"device_id": req.DeviceID})
	return &row, nil
}

// SyncOfflineData replays every pending payload for the device. Items fail
// independently: a bad payload bumps its attempt counter and records the
// error, and after maxSyncAttempts the row is marked FAILED and never retried.
func (s *FormService) SyncOfflineData(deviceID string) (*SyncSummary, error) {
	var pending []OfflineSync
	err := s.DB.
		Where("device_id = ? AND status = ?", deviceID, SyncStatusPending).
		Order("id asc").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{Results: make([]SyncItemResult, 0, len(pending))}

	for _, item := range pending {
		summary.TotalProcessed++

		response, replayErr := s.replayOfflineItem(item, deviceID)
		if replayErr == nil {
			now := time.Now()
			updates := map[string]any{
				"status":     SyncStatusSynced,
				"attempts":   item.Attempts + 1,
				"last_error": "",
				"synced_at":  now,
			}
			if err := s.DB.Model(&OfflineSync{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
				return nil, err
			}
			summary.Successful++
			rid := response.ID
			summary.Results = append(summary.Results, SyncItemResult{
				ID:         item.ID,
				Success:    true,
				ResponseID: &rid,
			})
			continue
		}

		attempts := item.Attempts + 1
		status := SyncStatusPending
		if attempts >= maxSyncAttempts {
			status = SyncStatusFailed
		}
		updates := map[string]any{
			"status":     status,
			"attempts":   attempts,
			"last_error": replayErr.Error(),
		}
		if err := s.DB.Model(&OfflineSync{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		summary.Failed++
		summary.Results = append(summary.Results, SyncItemResult{
			ID:      item.ID,
			Success: false,
			Error:   replayErr.Error(),
		})
	}

	if summary.TotalProcessed > 0 {
		s.log("INFO", "OFFLINE_SYNC", "offline sync completed", nil, nil,
			map[string]any{
				"device_id":  deviceID,
				"processed":  summary.TotalProcessed,
				"successful": summary.Successful,
				"failed":     summary.Failed,
			})
	}

	return summary, nil
}

func (s *FormService) replayOfflineItem(item OfflineSync, deviceID string) (*FormResponse, error) {
	var data map[string]any
	if err := json.Unmarshal(item.Data, &data); err != nil {
		return nil, apperrors.NewValidation("stored payload is not valid JSON")
	}

	return s.SubmitFormResponse(item.FormID, SubmitResponseRequest{Data: data}, CollectorContext{
		Offline: true,
		Info:    &CollectorInfo{Type: "offline_device", Name: deviceID},
	})
}
