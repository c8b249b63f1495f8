package authz

// Role classifies a principal. Roles are totally ordered: USER < MANAGER < ADMIN.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// roleRanks gives each known role its position in the hierarchy. Unknown
// roles are absent and rank as 0, below every real role.
var roleRanks = map[Role]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// ParseRole maps a stored role string onto a Role. The zero Role ("") is
// returned for anything unrecognized and fails every check downstream.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := roleRanks[r]; !ok {
		return Role("")
	}
	return r
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// HasRoleOrHigher reports whether actual sits at or above required in the
// role hierarchy. Invalid roles never satisfy any requirement.
func HasRoleOrHigher(actual, required Role) bool {
	actualRank, ok := roleRanks[actual]
	if !ok {
		return false
	}
	requiredRank, ok := roleRanks[required]
	if !ok {
		return false
	}
	return actualRank >= requiredRank
}
