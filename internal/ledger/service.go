package ledger

import (
	"errors"
	"sync"

	"github.com/susu3304/cashflow/internal/settle"
)

var (
	ErrNoSession     = errors.New("no active session")
	ErrSessionExists = errors.New("session already exists")
)

type entry struct {
	owner string
	book  *Book
}

// Service keeps one Book per key (a channel ID or an API book ID) and serializes every
// operation on it, so a settlement always sees a list nobody is appending to.
type Service struct {
	mu    sync.Mutex
	store map[string]*entry
}

func NewService() *Service {
	return &Service{store: make(map[string]*entry)}
}

func (s *Service) Start(key, owner string, names []string) error {
	_, err := s.Create(key, owner, names)
	return err
}

// Create starts a book like Start and returns its participants as stored, read under
// the same lock.
func (s *Service) Create(key, owner string, names []string) ([]settle.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[key]; ok {
		return nil, ErrSessionExists
	}
	book, err := NewBook(names)
	if err != nil {
		return nil, err
	}
	s.store[key] = &entry{owner: owner, book: book}
	return book.Participants(), nil
}

func (s *Service) Stop(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[key]; !ok {
		return ErrNoSession
	}
	delete(s.store, key)
	return nil
}

// Owner returns the ID of whoever started the session.
func (s *Service) Owner(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store[key]
	if !ok {
		return "", ErrNoSession
	}
	return e.owner, nil
}

func (s *Service) Participants(key string) ([]settle.Participant, error) {
	var out []settle.Participant
	err := s.with(key, func(b *Book) error {
		out = b.Participants()
		return nil
	})
	return out, err
}

func (s *Service) AddDebt(key string, lender, borrower int, amount int64) error {
	return s.with(key, func(b *Book) error {
		return b.AddDebt(lender, borrower, amount)
	})
}

func (s *Service) Undo(key string) error {
	return s.with(key, func(b *Book) error {
		return b.Undo()
	})
}

func (s *Service) Transactions(key string) ([]settle.Transaction, error) {
	var out []settle.Transaction
	err := s.with(key, func(b *Book) error {
		out = b.Transactions()
		return nil
	})
	return out, err
}

func (s *Service) Balances(key string) ([]int64, error) {
	var out []int64
	err := s.with(key, func(b *Book) error {
		var err error
		out, err = b.Balances()
		return err
	})
	return out, err
}

func (s *Service) Settle(key string, strategy settle.Strategy) (*Settlement, error) {
	var out *Settlement
	err := s.with(key, func(b *Book) error {
		var err error
		out, err = b.Settle(strategy)
		return err
	})
	return out, err
}

// View runs fn with exclusive access to the book under key. Reads and writes made in
// one fn see a single consistent book even if the session is replaced concurrently.
func (s *Service) View(key string, fn func(b *Book) error) error {
	return s.with(key, fn)
}

func (s *Service) with(key string, fn func(b *Book) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store[key]
	if !ok {
		return ErrNoSession
	}
	return fn(e.book)
}
