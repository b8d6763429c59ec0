package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories. One mutex makes every
// conditional update atomic, mirroring single-document Mongo updates.
// ---------------------------------------------------------------------------

type memStore struct {
	mu     sync.Mutex
	seq    int
	books  map[string]*domain.Book
	users  map[string]*domain.User
	loans  map[string]*domain.Loan
	order  []string // loan insertion order

	createLoanErr error
	releaseErr    error
	reopenErr     error
	listLoansErr  error
}

func newMemStore() *memStore {
	return &memStore{
		books: make(map[string]*domain.Book),
		users: make(map[string]*domain.User),
		loans: make(map[string]*domain.Loan),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addBook(isbn string, total, available int) *domain.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &domain.Book{ID: m.nextID("book"), Title: "Title " + isbn, Author: "Author", ISBN: isbn, TotalCopies: total, AvailableCopies: available}
	m.books[b.ID] = b
	clone := *b
	return &clone
}

func (m *memStore) addUser(username, role string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: m.nextID("user"), Username: username, Role: role, Name: username}
	m.users[u.ID] = u
	clone := *u
	return &clone
}

func (m *memStore) book(id string) domain.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.books[id]
}

func (m *memStore) loan(id string) domain.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.loans[id]
}

func (m *memStore) loanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loans)
}

// --- books ---

type stubBookRepo struct{ m *memStore }

func (r stubBookRepo) Create(_ context.Context, b *domain.Book) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.books {
		if existing.ISBN == b.ISBN {
			return domain.ErrDuplicateISBN
		}
	}
	b.ID = r.m.nextID("book")
	clone := *b
	r.m.books[b.ID] = &clone
	return nil
}

func (r stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r stubBookRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Book, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[string]*domain.Book)
	for _, id := range ids {
		if b, ok := r.m.books[id]; ok {
			clone := *b
			out[id] = &clone
		}
	}
	return out, nil
}

func (r stubBookRepo) FindAll(_ context.Context) ([]*domain.Book, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.Book, 0, len(r.m.books))
	for _, b := range r.m.books {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r stubBookRepo) Update(_ context.Context, id string, c domain.BookChanges) (*domain.Book, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	if c.TotalCopies != nil {
		delta := *c.TotalCopies - b.TotalCopies
		if b.AvailableCopies+delta < 0 {
			return nil, domain.ErrCopiesOnLoan
		}
		b.TotalCopies = *c.TotalCopies
		b.AvailableCopies += delta
	}
	if c.Title != nil {
		b.Title = *c.Title
	}
	clone := *b
	return &clone, nil
}

func (r stubBookRepo) DeleteByID(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.m.books, id)
	return nil
}

func (r stubBookRepo) ReserveCopy(_ context.Context, id string) (*domain.Book, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return nil, domain.ErrBookUnavailable
	}
	b.AvailableCopies--
	clone := *b
	return &clone, nil
}

func (r stubBookRepo) ReleaseCopy(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.releaseErr != nil {
		return false, r.m.releaseErr
	}
	b, ok := r.m.books[id]
	if !ok {
		return false, domain.ErrBookNotFound
	}
	if b.AvailableCopies >= b.TotalCopies {
		return false, nil
	}
	b.AvailableCopies++
	return true, nil
}

// --- users ---

type stubUserRepo struct{ m *memStore }

func (r stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Username == u.Username {
			return domain.ErrUserExists
		}
	}
	u.ID = r.m.nextID("user")
	clone := *u
	r.m.users[u.ID] = &clone
	return nil
}

func (r stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func (r stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) ListByRole(_ context.Context, role string) ([]*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.User
	for _, u := range r.m.users {
		if u.Role == role {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

// --- loans ---

type stubLoanRepo struct{ m *memStore }

func (r stubLoanRepo) Create(_ context.Context, l *domain.Loan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createLoanErr != nil {
		return r.m.createLoanErr
	}
	l.ID = r.m.nextID("loan")
	clone := *l
	r.m.loans[l.ID] = &clone
	r.m.order = append(r.m.order, l.ID)
	return nil
}

func (r stubLoanRepo) FindByID(_ context.Context, id string) (*domain.Loan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	clone := *l
	return &clone, nil
}

func (r stubLoanRepo) List(_ context.Context, f ports.LoanFilter) ([]*domain.Loan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.listLoansErr != nil {
		return nil, r.m.listLoansErr
	}
	out := []*domain.Loan{}
	for _, id := range r.m.order {
		l := r.m.loans[id]
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		clone := *l
		out = append(out, &clone)
	}
	return out, nil
}

func (r stubLoanRepo) MarkReturned(_ context.Context, id string, at time.Time) (*domain.Loan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.loans[id]
	if !ok || l.Status != domain.LoanActive {
		return nil, domain.ErrLoanAlreadyReturned
	}
	l.Status = domain.LoanReturned
	ts := at
	l.ReturnDate = &ts
	clone := *l
	return &clone, nil
}

func (r stubLoanRepo) Reopen(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.reopenErr != nil {
		return r.m.reopenErr
	}
	l, ok := r.m.loans[id]
	if !ok || l.Status != domain.LoanReturned {
		return domain.ErrLoanNotFound
	}
	l.Status = domain.LoanActive
	l.ReturnDate = nil
	return nil
}

// --- collaborators ---

type stubIdempotency struct {
	mu       sync.Mutex
	records  map[string]ports.IdempotencyRecord
	err      error
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{records: make(map[string]ports.IdempotencyRecord)}
}

func (s *stubIdempotency) Claim(_ context.Context, key, fingerprint string) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ports.IdempotencyRecord{}, false, s.err
	}
	if rec, ok := s.records[key]; ok {
		return rec, false, nil
	}
	rec := ports.IdempotencyRecord{Fingerprint: fingerprint}
	s.records[key] = rec
	return rec, true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, key string, rec ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	s.released = append(s.released, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LoanEvent
}

func (p *recordingPublisher) Publish(e domain.LoanEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// plainHasher stores passwords as "hashed:<pwd>".
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}
