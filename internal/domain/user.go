package domain

import "strings"

// Role is the role string issued by the marketplace API.
// An empty role means anonymous; "client" is a regular shopper and any other
// value is treated as elevated.
type Role string

const (
	RoleAnonymous Role = ""
	RoleClient    Role = "client"
)

// IsAnonymous reports whether no user is signed in.
func (r Role) IsAnonymous() bool {
	return strings.TrimSpace(string(r)) == ""
}

// IsElevated reports whether the role may enter the admin shell.
func (r Role) IsElevated() bool {
	return !r.IsAnonymous() && !strings.EqualFold(string(r), string(RoleClient))
}

// User is the signed-in account as returned by the auth endpoints.
type User struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// DisplayName returns the first name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// UserProfile is the normalized account profile used by the profile and
// checkout pages. Identity fields are editable; the rest is read-only.
type UserProfile struct {
	ID              string `json:"id,omitempty"`
	FirstName       string `json:"firstName"`
	PaternalSurname string `json:"paternalSurname"`
	MaternalSurname string `json:"maternalSurname"`
	Department      string `json:"department"`
	City            string `json:"city"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	Picture         string `json:"picture"`

	CreatedAt   string  `json:"createdAt,omitempty"`
	OrdersCount int     `json:"ordersCount"`
	Orders      []Order `json:"orders,omitempty"`
}

// FullName joins the non-empty name parts.
func (p UserProfile) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.PaternalSurname, p.MaternalSurname} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Initials returns up to two upper-case initials for the avatar.
func (p UserProfile) Initials() string {
	var b strings.Builder
	for _, s := range []string{p.FirstName, p.PaternalSurname} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		b.WriteString(strings.ToUpper(string([]rune(s)[:1])))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
