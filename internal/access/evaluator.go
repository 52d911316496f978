package access

import "time"

// Principal is the authenticated actor behind a request.
type Principal struct {
	UserID uint
	Role   Role
}

// ShareGrant is a live internal share targeting the principal.
type ShareGrant struct {
	CanCollect bool
	CanExport  bool
	ExpiresAt  *time.Time
}

func (g *ShareGrant) expired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}

// FormContext carries everything Evaluate needs about one form and one
// principal. Callers load it from storage; Evaluate itself never touches a
// database.
type FormContext struct {
	CreatorID           uint
	ProjectCreatorID    *uint
	IsActiveParticipant bool
	Share               *ShareGrant
}

// Decision is the evaluated permission set for one principal on one form.
type Decision struct {
	CanView    bool
	CanEdit    bool
	CanDelete  bool
	CanCollect bool
	CanExport  bool
}

// Evaluate applies the access rules in precedence order, first match wins:
//  1. platform admin: every operation
//  2. form creator: every operation
//  3. creator of the owning project holding the PI role: view/edit/delete
//  4. active participant of the owning project: view only
//  5. non-expired share targeting the principal: view plus the share's flags
//  6. otherwise denied
func Evaluate(p Principal, fc FormContext) Decision {
	if p.Role == RoleAdmin {
		return Decision{CanView: true, CanEdit: true, CanDelete: true, CanCollect: true, CanExport: true}
	}

	if p.UserID == fc.CreatorID {
		return Decision{CanView: true, CanEdit: true, CanDelete: true, CanCollect: true, CanExport: true}
	}

	if fc.ProjectCreatorID != nil && *fc.ProjectCreatorID == p.UserID && p.Role == RolePrincipalInvestigator {
		return Decision{CanView: true, CanEdit: true, CanDelete: true}
	}

	if fc.IsActiveParticipant {
		return Decision{CanView: true}
	}

	if fc.Share != nil && !fc.Share.expired(time.Now()) {
		return Decision{
			CanView:    true,
			CanCollect: fc.Share.CanCollect,
			CanExport:  fc.Share.CanExport,
		}
	}

	return Decision{}
}

// CanAccessProject reports whether a principal may attach work to a project:
// admins, the project creator, and active participants.
func CanAccessProject(p Principal, projectCreatorID uint, isActiveParticipant bool) bool {
	if p.Role == RoleAdmin {
		return true
	}
	if p.UserID == projectCreatorID {
		return true
	}
	return isActiveParticipant
}
