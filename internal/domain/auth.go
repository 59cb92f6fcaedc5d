package domain

// Identity is the resolved caller of an operation: either a user or anonymous.
// It is passed explicitly to every ticket operation.
type Identity struct {
	User *User
}

// Anonymous returns the identity used when no valid session is present.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated wraps a resolved user.
func Authenticated(user *User) Identity {
	return Identity{User: user}
}

// IsAnonymous reports whether no user was resolved.
func (i Identity) IsAnonymous() bool {
	return i.User == nil || i.User.ID == ""
}

// UserID returns the caller id, or "" when anonymous.
func (i Identity) UserID() string {
	if i.IsAnonymous() {
		return ""
	}
	return i.User.ID
}
