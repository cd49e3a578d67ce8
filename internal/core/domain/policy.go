package domain

// IsAdmin reports whether the actor holds the administrator role.
func IsAdmin(a Actor) bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// CanView reports whether the actor may read or modify the record.
// Administrators see everything; everyone else sees only what they own.
func CanView(a Actor, m *MilkRecord) bool {
	if m == nil {
		return false
	}
	return IsAdmin(a) || (a.ID != "" && m.OwnerUserID == a.ID)
}

// CanAccessAccount reports whether the actor may read or modify the account.
func CanAccessAccount(a Actor, accountID string) bool {
	return IsAdmin(a) || (a.ID != "" && accountID == a.ID)
}
