package models

const (
	SessionAuthenticated   = "authenticated"
	SessionUnauthenticated = "unauthenticated"
)

// Session view published to consumers
// AccessToken is set only when Status is SessionAuthenticated
type SessionState struct {
	Status      string
	AccessToken string
}

func Authenticated(access string) SessionState {
	return SessionState{Status: SessionAuthenticated, AccessToken: access}
}

func Unauthenticated() SessionState {
	return SessionState{Status: SessionUnauthenticated}
}

func (s SessionState) IsAuthenticated() bool {
	return s.Status == SessionAuthenticated
}
