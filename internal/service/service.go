// Package service coordinates reads and writes between the record store and
// the query cache, so every surface sees the same consistent data.
package service

import (
	"errors"
	"time"

	"mailtriage/internal/cache"
	"mailtriage/internal/store"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Session reports whether the current caller may use the service.
type Session interface {
	Authenticated() bool
}

type sessionFunc func() bool

func (f sessionFunc) Authenticated() bool { return f() }

// Service is the mutation coordinator. Reads go through the cache; writes go
// to the store first and patch the cache only after they succeed.
type Service struct {
	store    store.RecordStore
	cache    *cache.Cache
	notifier Notifier
	session  Session
	clock    func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithSession(sess Session) Option {
	return func(s *Service) { s.session = sess }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func New(rs store.RecordStore, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		store:    rs,
		cache:    c,
		notifier: LogNotifier{},
		session:  sessionFunc(func() bool { return true }),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) authorize() error {
	if s.session == nil || !s.session.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// Now is the service clock, used for everything relative to "today".
func (s *Service) Now() time.Time {
	return s.clock()
}
