package form

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	ShareTypeInternal = "INTERNAL"
	ShareTypeExternal = "EXTERNAL"

	CollectorUser          = "USER"
	CollectorPublic        = "PUBLIC"
	CollectorPublicOffline = "PUBLIC_OFFLINE"

	SyncStatusPending = "PENDING"
	SyncStatusSynced  = "SYNCED"
	SyncStatusFailed  = "FAILED"
)

// maxSyncAttempts bounds offline replays; after the cap the row moves to the
// terminal FAILED status and later syncs skip it.
const maxSyncAttempts = 5

type Form struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Schema      datatypes.JSON `gorm:"type:jsonb;not null" json:"schema"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	// Set only by the public-link share path, never by direct mutation.
	ShareToken               *string   `gorm:"size:64;uniqueIndex" json:"share_token,omitempty"`
	AllowMultipleSubmissions bool      `gorm:"not null;default:true" json:"allow_multiple_submissions"`
	CreatorID                uint      `gorm:"not null;index" json:"creator_id"`
	ActivityID               *uint     `gorm:"index" json:"activity_id,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (Form) TableName() string { return "forms" }

type FormShare struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID          uint       `gorm:"not null;index" json:"form_id"`
	ShareType       string     `gorm:"size:20;not null" json:"share_type"`
	SharedWithID    *uint      `gorm:"index" json:"shared_with_id,omitempty"`
	CanCollect      bool       `gorm:"not null;default:false" json:"can_collect"`
	CanExport       bool       `gorm:"not null;default:false" json:"can_export"`
	ShareToken      *string    `gorm:"size:64;uniqueIndex" json:"share_token,omitempty"`
	MaxSubmissions  *int       `json:"max_submissions,omitempty"`
	SubmissionCount int        `gorm:"not null;default:0" json:"submission_count"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	LastAccessed    *time.Time `json:"last_accessed,omitempty"`
	CreatedByID     uint       `gorm:"not null" json:"created_by_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (FormShare) TableName() string { return "form_shares" }

type FormResponse struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID        uint           `gorm:"not null;index" json:"form_id"`
	RespondentID  *uint          `gorm:"index" json:"respondent_id,omitempty"`
	Data          datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	CollectorType string         `gorm:"size:20;not null" json:"collector_type"`
	CollectorInfo datatypes.JSON `gorm:"type:jsonb" json:"collector_info,omitempty"`
	IsOffline     bool           `gorm:"not null;default:false" json:"is_offline"`
	SubmittedAt   time.Time      `gorm:"not null" json:"submitted_at"`
}

func (FormResponse) TableName() string { return "form_responses" }

type ResponsePhoto struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID uint      `gorm:"not null;index" json:"response_id"`
	Filename   string    `gorm:"type:text;not null" json:"filename"`
	Filepath   string    `gorm:"type:text;not null" json:"filepath"`
	MimeType   string    `gorm:"size:100;not null;default:''" json:"mime_type"`
	Size       int64     `gorm:"not null;default:0" json:"size"`
	Width      int       `gorm:"not null;default:0" json:"width"`
	Height     int       `gorm:"not null;default:0" json:"height"`
	Caption    string    `gorm:"type:text;not null;default:''" json:"caption"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ResponsePhoto) TableName() string { return "response_photos" }

type FormComment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID    uint      `gorm:"not null;index" json:"form_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (FormComment) TableName() string { return "form_comments" }

type OfflineSync struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID    uint           `gorm:"not null;index" json:"form_id"`
	DeviceID  string         `gorm:"size:100;not null;index" json:"device_id"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	Status    string         `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Attempts  int            `gorm:"not null;default:0" json:"attempts"`
	LastError string         `gorm:"type:text;not null;default:''" json:"last_error"`
	SyncedAt  *time.Time     `json:"synced_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (OfflineSync) TableName() string { return "offline_syncs" }

type CreateFormRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema" binding:"required"`
	ActivityID  *uint           `json:"activity_id"`
	// Accepted for API compatibility; the stored form always allows multiple
	// submissions (see CreateForm).
	AllowMultipleSubmissions *bool `json:"allow_multiple_submissions"`
	EnablePublicAccess       bool  `json:"enable_public_access"`
}

type UpdateFormRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	IsActive    *bool           `json:"is_active"`
}

type ShareFormRequest struct {
	UserID         uint       `json:"user_id" binding:"required"`
	CanCollect     bool       `json:"can_collect"`
	CanExport      bool       `json:"can_export"`
	MaxSubmissions *int       `json:"max_submissions"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type PublicShareRequest struct {
	MaxSubmissions *int       `json:"max_submissions"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type PublicShareLink struct {
	Token    string     `json:"token"`
	ShareURL string     `json:"share_url"`
	Share    *FormShare `json:"share"`
}

// PublicFormAccess is the result of resolving a public token.
type PublicFormAccess struct {
	Form                 *Form      `json:"form"`
	Share                *FormShare `json:"-"`
	CanCollect           bool       `json:"can_collect"`
	RemainingSubmissions *int       `json:"remaining_submissions"`
}

type CollectorInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Type  string `json:"type,omitempty"`
}

type PhotoInput struct {
	DataBase64 string   `json:"data_base64"`
	Filename   string   `json:"filename"`
	MimeType   string   `json:"mime_type"`
	Caption    string   `json:"caption"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

type SubmitResponseRequest struct {
	Data          map[string]any `json:"data" binding:"required"`
	CollectorInfo *CollectorInfo `json:"collector_info"`
	Photos        []PhotoInput   `json:"photos"`
}

type StoreOfflineRequest struct {
	DeviceID string         `json:"device_id" binding:"required"`
	Data     map[string]any `json:"data" binding:"required"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type SyncItemResult struct {
	ID         uint   `json:"id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	ResponseID *uint  `json:"response_id,omitempty"`
}

type SyncSummary struct {
	TotalProcessed int              `json:"total_processed"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []SyncItemResult `json:"results"`
}
