package user

import "time"

// Profile is a registered customer or administrator.
type Profile struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	RoleCode     RoleCode
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Email
	}
}

type ListFilter struct {
	RoleCode *RoleCode
}

// Identity is the authenticated user attached to a session.
type Identity struct {
	UserID   int64
	Email    string
	RoleCode RoleCode
}

// SameUser reports whether a and b name the same user; two nil identities match.
func SameUser(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UserID == b.UserID
}
