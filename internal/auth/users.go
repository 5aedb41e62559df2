package auth

// Role of an authenticated identity. The engine only ever receives the
// identity and its role; credential checks stop here.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLecturer Role = "lecturer"
)

// User is one entry of the static login table.
type User struct {
	Username string
	Password string
	Role     Role
}

// DefaultUsers returns the static identity table: one admin plus one lecturer
// account per catalog subject.
func DefaultUsers() map[string]User {
	users := map[string]User{
		"admin": {Username: "admin", Password: "admin123", Role: RoleAdmin},
	}
	for _, u := range []string{"lect1012", "lect1022", "lect1032", "lect1042", "lect1062"} {
		users[u] = User{Username: u, Password: "lect123", Role: RoleLecturer}
	}
	return users
}

// Authenticate checks a username/password pair against the table.
func Authenticate(users map[string]User, username, password string) (User, bool) {
	u, ok := users[username]
	if !ok || u.Password != password {
		return User{}, false
	}
	return u, true
}
