package identity

// User is the acting identity carried on a request. Identities live in an
// external provider; only the id and username reach this service.
type User struct {
	ID       string
	Username string
}

// Zero reports whether no identity is present.
func (u User) Zero() bool {
	return u.ID == ""
}
