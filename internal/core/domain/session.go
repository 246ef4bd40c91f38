package domain

// Session identifies the authenticated caller of a request. It is built by the
// transport layer from the bearer token and handed to services explicitly.
type Session struct {
	UserID string
	Email  string
}

func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}
