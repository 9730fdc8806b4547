package auth

// Static is a session whose state never changes, for in-process surfaces.
type Static bool

func (s Static) Authenticated() bool { return bool(s) }

// TokenSession is authenticated while its token verifies.
type TokenSession struct {
	svc   *Service
	token string
}

func NewTokenSession(svc *Service, token string) *TokenSession {
	return &TokenSession{svc: svc, token: token}
}

func (s *TokenSession) Authenticated() bool {
	if s.token == "" {
		return false
	}
	_, err := s.svc.VerifyToken(s.token)
	return err == nil
}

// Token is the raw bearer token held by the session.
func (s *TokenSession) Token() string {
	return s.token
}
