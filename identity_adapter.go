package walks

// UserIdentity adapts a User into the Identity interface for token generation.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's numeric id.
func (u UserIdentity) ID() int64 {
	if u.user == nil {
		return 0
	}
	return u.user.ID
}

// Username returns the user's username.
func (u UserIdentity) Username() string {
	if u.user == nil {
		return ""
	}
	return u.user.Username
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// Role returns the user's role.
func (u UserIdentity) Role() UserRole {
	if u.user == nil {
		return ""
	}
	return u.user.Role
}

// Active returns the user's active flag.
func (u UserIdentity) Active() bool {
	if u.user == nil {
		return false
	}
	return u.user.IsActive
}

var _ Identity = UserIdentity{}
