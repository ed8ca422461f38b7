package domain

import "slices"

// Roles checked by the UI. Role names come from the access token's authorities claim.
const (
	RoleMaintainIncentiveLevels = "ROLE_MAINTAIN_INCENTIVE_LEVELS"
	RoleIncentiveReviews        = "ROLE_INCENTIVE_REVIEWS"
	RoleGlobalSearch            = "ROLE_GLOBAL_SEARCH"
)

// Caseload is a prison the user has access to.
type Caseload struct {
	ID   string
	Name string
}

// User is the signed-in member of staff.
type User struct {
	Username         string
	Name             string
	AuthSource       string // "nomis", "auth", "delius"...
	ActiveCaseloadID string
	Caseloads        []Caseload
	Roles            []string
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// ActiveCaseload returns the caseload matching ActiveCaseloadID, or nil.
func (u *User) ActiveCaseload() *Caseload {
	if u == nil {
		return nil
	}
	for i := range u.Caseloads {
		if u.Caseloads[i].ID == u.ActiveCaseloadID {
			return &u.Caseloads[i]
		}
	}
	return nil
}

// IsNomisUser reports whether the user signed in with a prison (NOMIS) account.
// Only these users have caseloads.
func (u *User) IsNomisUser() bool {
	return u != nil && u.AuthSource == "nomis"
}
