package access

type Role string

const (
	RoleAdmin                 Role = "ADMIN"
	RolePrincipalInvestigator Role = "PRINCIPAL_INVESTIGATOR"
	RoleResearcher            Role = "RESEARCHER"
	RoleEngineer              Role = "ENGINEER"
	RoleStudent               Role = "STUDENT"
	RoleGuest                 Role = "GUEST"
)

// Normalize collapses arbitrary role strings onto the closed set. Unknown
// values fall back to GUEST, never to a privileged role.
func Normalize(role string) Role {
	switch Role(role) {
	case RoleAdmin, RolePrincipalInvestigator, RoleResearcher, RoleEngineer, RoleStudent, RoleGuest:
		return Role(role)
	default:
		return RoleGuest
	}
}

// CanCreateForms reports whether a role is allowed to create forms.
func CanCreateForms(r Role) bool {
	switch r {
	case RoleAdmin, RolePrincipalInvestigator, RoleResearcher, RoleEngineer:
		return true
	default:
		return false
	}
}
