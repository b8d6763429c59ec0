package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

// LedgerService is the only writer of Book.AvailableCopies once a book
// exists. Every issue and return couples the loan write with an atomic
// conditional counter update inside one unit of work.
type LedgerService struct {
	books  ports.BookRepository
	users  ports.UserRepository
	loans  ports.LoanRepository
	tx     ports.Transactor
	idem   ports.IdempotencyStore
	events ports.LoanEventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// LedgerOption configures optional collaborators of the ledger.
type LedgerOption func(*LedgerService)

// WithIdempotencyStore enables Idempotency-Key replay on IssueLoan.
func WithIdempotencyStore(store ports.IdempotencyStore) LedgerOption {
	return func(s *LedgerService) { s.idem = store }
}

// WithEventPublisher announces committed issues and returns.
func WithEventPublisher(p ports.LoanEventPublisher) LedgerOption {
	return func(s *LedgerService) { s.events = p }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(
	books ports.BookRepository,
	users ports.UserRepository,
	loans ports.LoanRepository,
	tx ports.Transactor,
	logger zerolog.Logger,
	opts ...LedgerOption,
) *LedgerService {
	if tx == nil {
		tx = directTransactor{}
	}
	s := &LedgerService{
		books:  books,
		users:  users,
		loans:  loans,
		tx:     tx,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueLoan lends one copy of a book to a user. A request carrying an
// Idempotency-Key claims the key first; a repeat of the same request gets
// the original loan back and a different request under the key is refused.
func (s *LedgerService) IssueLoan(ctx context.Context, in ports.IssueLoanInput) (*domain.LoanView, error) {
	key := in.IdempotencyKey
	if key == "" || s.idem == nil {
		return s.issue(ctx, in)
	}

	fp := fingerprint(in)
	rec, claimed, err := s.idem.Claim(ctx, key, fp)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, issuing anyway")
		return s.issue(ctx, in)
	}
	if !claimed {
		return s.replay(ctx, key, fp, rec)
	}

	view, err := s.issue(ctx, in)
	if err != nil {
		if relErr := s.idem.Release(ctx, key); relErr != nil {
			s.logger.Warn().Err(relErr).Str("idempotency_key", key).Msg("failed to release idempotency key")
		}
		return nil, err
	}
	if err := s.idem.Complete(ctx, key, ports.IdempotencyRecord{Fingerprint: fp, LoanID: view.ID}); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Str("loan_id", view.ID).Msg("failed to store idempotency key")
	}
	return view, nil
}

func (s *LedgerService) issue(ctx context.Context, in ports.IssueLoanInput) (*domain.LoanView, error) {
	now := s.now().UTC()
	if !in.DueDate.After(now) {
		return nil, domain.ErrInvalidDueDate
	}

	book, err := s.books.FindByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	// Fast rejection only. ReserveCopy below is the authoritative check.
	if book.AvailableCopies <= 0 {
		return nil, domain.ErrBookUnavailable
	}

	loan := &domain.Loan{
		BookID:    book.ID,
		UserID:    user.ID,
		LoanDate:  now,
		DueDate:   in.DueDate.UTC(),
		Status:    domain.LoanActive,
		CreatedAt: now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		reserved, err := s.books.ReserveCopy(ctx, book.ID)
		if err != nil {
			return err
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			s.compensateReserve(ctx, book.ID, err)
			return err
		}
		book = reserved
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindStoreFailure {
			s.logger.Error().Err(err).Str("book_id", in.BookID).Str("user_id", in.UserID).Msg("issue loan failed")
		}
		return nil, err
	}

	s.publish(domain.LoanIssuedEvent, loan, now)

	s.logger.Info().
		Str("loan_id", loan.ID).
		Str("book_id", book.ID).
		Str("user_id", user.ID).
		Int("available_copies", book.AvailableCopies).
		Msg("loan issued")

	return &domain.LoanView{Loan: *loan, Book: book, User: user.AsBorrower()}, nil
}

// ReturnLoan closes an active loan and gives the copy back to the shelf.
func (s *LedgerService) ReturnLoan(ctx context.Context, loanID string) (*domain.LoanView, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == domain.LoanReturned {
		return nil, domain.ErrLoanAlreadyReturned
	}

	now := s.now().UTC()
	var returned *domain.Loan
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		returned, err = s.loans.MarkReturned(ctx, loan.ID, now)
		if err != nil {
			return err
		}

		released, err := s.books.ReleaseCopy(ctx, loan.BookID)
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			s.logger.Debug().Str("loan_id", loan.ID).Str("book_id", loan.BookID).Msg("book deleted, skipping copy release")
		case err != nil:
			s.compensateReturn(ctx, loan.ID, err)
			return err
		case !released:
			s.logger.Warn().Str("loan_id", loan.ID).Str("book_id", loan.BookID).Msg("book already at total copies, skipping copy release")
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindStoreFailure {
			s.logger.Error().Err(err).Str("loan_id", loanID).Msg("return loan failed")
		}
		return nil, err
	}

	s.publish(domain.LoanReturnedEvent, returned, now)
	s.logger.Info().Str("loan_id", returned.ID).Str("book_id", returned.BookID).Msg("loan returned")

	return s.join(ctx, returned, now)
}

// GetLoan returns a single loan with its book and borrower.
func (s *LedgerService) GetLoan(ctx context.Context, loanID string) (*domain.LoanView, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, loan, s.now().UTC())
}

// ListLoans returns every loan for admins and only their own for students.
func (s *LedgerService) ListLoans(ctx context.Context, in ports.ListLoansInput) ([]*domain.LoanView, error) {
	var filter ports.LoanFilter
	switch in.Role {
	case domain.RoleAdmin:
	case domain.RoleStudent:
		if in.UserID == "" {
			return []*domain.LoanView{}, nil
		}
		filter.UserID = in.UserID
	default:
		return nil, domain.ErrInvalidRole
	}

	var want domain.LoanStatus
	if in.Status != "" {
		st, ok := domain.ParseLoanStatus(in.Status)
		if !ok {
			return nil, domain.ErrInvalidLoanStatus
		}
		want = st
		// overdue is stored as active
		filter.Status = domain.LoanActive
		if st == domain.LoanReturned {
			filter.Status = domain.LoanReturned
		}
	}

	loans, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if want != "" {
		kept := loans[:0]
		for _, l := range loans {
			if l.StatusAt(now) == want {
				kept = append(kept, l)
			}
		}
		loans = kept
	}

	return s.joinAll(ctx, loans, now)
}

func (s *LedgerService) replay(ctx context.Context, key, fp string, rec ports.IdempotencyRecord) (*domain.LoanView, error) {
	switch {
	case rec.Fingerprint != fp:
		return nil, domain.ErrIdempotencyKeyReused
	case rec.LoanID == "":
		return nil, domain.ErrIdempotencyInFlight
	}
	view, err := s.GetLoan(ctx, rec.LoanID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("idempotency_key", key).Str("loan_id", rec.LoanID).Msg("idempotent replay")
	return view, nil
}

// fingerprint identifies the request an Idempotency-Key was first sent with.
func fingerprint(in ports.IssueLoanInput) string {
	h := sha256.New()
	for _, part := range []string{in.BookID, in.UserID, in.DueDate.UTC().Format(time.RFC3339Nano)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// compensateReserve gives back a copy reserved for a loan that was never
// written. Inside a real transaction the abort already undoes the reserve.
func (s *LedgerService) compensateReserve(ctx context.Context, bookID string, cause error) {
	if _, err := s.books.ReleaseCopy(ctx, bookID); err != nil {
		s.logger.Error().Err(err).AnErr("cause", cause).Str("book_id", bookID).Msg("failed to release reserved copy")
	}
}

// compensateReturn reopens a loan whose copy could not be put back, so a
// retry finds it active. Inside a real transaction the abort already undoes
// MarkReturned.
func (s *LedgerService) compensateReturn(ctx context.Context, loanID string, cause error) {
	if err := s.loans.Reopen(ctx, loanID); err != nil {
		s.logger.Error().Err(err).AnErr("cause", cause).Str("loan_id", loanID).Msg("failed to reopen loan")
	}
}

func (s *LedgerService) publish(t domain.LoanEventType, loan *domain.Loan, at time.Time) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.LoanEvent{
		ID:         uuid.NewString(),
		Type:       t,
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		UserID:     loan.UserID,
		DueDate:    loan.DueDate,
		OccurredAt: at,
	})
}

func (s *LedgerService) join(ctx context.Context, loan *domain.Loan, now time.Time) (*domain.LoanView, error) {
	views, err := s.joinAll(ctx, []*domain.Loan{loan}, now)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// joinAll resolves books and borrowers with one batched lookup each.
func (s *LedgerService) joinAll(ctx context.Context, loans []*domain.Loan, now time.Time) ([]*domain.LoanView, error) {
	views := make([]*domain.LoanView, 0, len(loans))
	if len(loans) == 0 {
		return views, nil
	}

	bookIDs := make([]string, 0, len(loans))
	userIDs := make([]string, 0, len(loans))
	for _, l := range loans {
		bookIDs = append(bookIDs, l.BookID)
		userIDs = append(userIDs, l.UserID)
	}

	books, err := s.books.FindByIDs(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, l := range loans {
		v := &domain.LoanView{Loan: *l, Book: books[l.BookID], User: users[l.UserID].AsBorrower()}
		v.Status = l.StatusAt(now)
		views = append(views, v)
	}
	return views, nil
}

// directTransactor runs fn without a transaction.
type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
