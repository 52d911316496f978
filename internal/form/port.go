package form

import (
	"research-hub-api/internal/access"
	"research-hub-api/internal/logs"
)

// FormServicePort is the surface the controller depends on.
type FormServicePort interface {
	CreateForm(req CreateFormRequest, p access.Principal) (*Form, error)
	GetForm(id uint, p access.Principal) (*Form, *access.Decision, error)
	ListForms(p access.Principal) ([]Form, error)
	UpdateForm(id uint, req UpdateFormRequest, p access.Principal) (*Form, error)
	DeleteForm(id uint, p access.Principal) error

	ShareFormWithUser(formID uint, req ShareFormRequest, p access.Principal) (*FormShare, error)
	CreatePublicShareLink(formID uint, req PublicShareRequest, p access.Principal) (*PublicShareLink, error)
	ResolvePublicToken(token string) (*PublicFormAccess, error)

	SubmitFormResponse(formID uint, req SubmitResponseRequest, cc CollectorContext) (*FormResponse, error)
	ListResponses(formID uint, p access.Principal) ([]FormResponse, map[uint][]ResponsePhoto, error)

	AddComment(formID uint, req AddCommentRequest, p access.Principal) (*FormComment, error)
	ListComments(formID uint, p access.Principal) ([]FormComment, error)

	StoreOfflineData(formID uint, req StoreOfflineRequest) (*OfflineSync, error)
	SyncOfflineData(deviceID string) (*SyncSummary, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, metadata interface{}) error
}
