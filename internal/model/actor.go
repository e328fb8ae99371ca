package model

// Role names as they appear in JWT claims.
const (
	RoleAdmin  = "ADMIN"
	RoleBroker = "BROKER"
)

// Actor is the authenticated caller of an operation. It is passed explicitly
// into anything that needs an authorization decision so those decisions stay
// pure functions of their inputs.
type Actor struct {
	ID    string
	Roles []string
}

func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// Owns reports whether the actor is the broker that created the listing.
func (a Actor) Owns(l *Listing) bool {
	return a.ID != "" && a.ID == l.BrokerID
}

// CanEdit reports whether the actor may change a listing's content fields.
func (a Actor) CanEdit(l *Listing) bool {
	return a.IsAdmin() || a.Owns(l)
}
