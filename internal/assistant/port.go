package assistant

import (
	"research-hub-api/internal/access"
	"research-hub-api/internal/form"
)

type FormReaderPort interface {
	GetForm(id uint, p access.Principal) (*form.Form, *access.Decision, error)
	ListResponses(formID uint, p access.Principal) ([]form.FormResponse, map[uint][]form.ResponsePhoto, error)
}
