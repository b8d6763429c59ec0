package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

func TestParseIDs_DropsMalformedAndDuplicates(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	got := parseIDs([]string{a.Hex(), "not-an-id", b.Hex(), a.Hex(), ""})

	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestStoreErr_IsStoreFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := storeErr("find book", cause)

	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure in chain")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if domain.KindOf(err) != domain.KindStoreFailure {
		t.Fatalf("unexpected kind %q", domain.KindOf(err))
	}
}

func TestIsNoDocuments(t *testing.T) {
	if !isNoDocuments(mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments to match")
	}
	if isNoDocuments(errors.New("other")) {
		t.Fatalf("unexpected match")
	}
}

func TestLoanDocument_ToDomain(t *testing.T) {
	returned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := loanDocument{
		ID:         primitive.NewObjectID(),
		BookID:     primitive.NewObjectID(),
		UserID:     primitive.NewObjectID(),
		DueDate:    returned.Add(time.Hour),
		ReturnDate: &returned,
		Status:     "returned",
	}

	l := doc.toDomain()

	if l.ID != doc.ID.Hex() || l.BookID != doc.BookID.Hex() || l.UserID != doc.UserID.Hex() {
		t.Fatalf("ids not mapped: %+v", l)
	}
	if l.Status != domain.LoanReturned {
		t.Fatalf("unexpected status %q", l.Status)
	}
	if l.ReturnDate == nil || !l.ReturnDate.Equal(returned) {
		t.Fatalf("unexpected return date %v", l.ReturnDate)
	}
}

func TestBookRepository_MalformedIDsAreNotFound(t *testing.T) {
	r := &BookRepository{}

	if _, err := r.FindByID(context.Background(), "xyz"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("FindByID: expected ErrBookNotFound, got %v", err)
	}
	if _, err := r.ReserveCopy(context.Background(), "xyz"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("ReserveCopy: expected ErrBookNotFound, got %v", err)
	}
	if _, err := r.ReleaseCopy(context.Background(), "xyz"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("ReleaseCopy: expected ErrBookNotFound, got %v", err)
	}
	if err := r.DeleteByID(context.Background(), "xyz"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("DeleteByID: expected ErrBookNotFound, got %v", err)
	}
}
