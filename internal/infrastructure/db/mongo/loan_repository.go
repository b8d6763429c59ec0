package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

type LoanRepository struct {
	col *mongo.Collection
}

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{col: db.Collection(collectionLoans)}
}

// loanDocument stores references as ObjectIDs so loans can be matched
// against books and users with $in lookups.
type loanDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	BookID     primitive.ObjectID `bson:"book_id"`
	UserID     primitive.ObjectID `bson:"user_id"`
	LoanDate   time.Time          `bson:"loan_date"`
	DueDate    time.Time          `bson:"due_date"`
	ReturnDate *time.Time         `bson:"return_date"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *loanDocument) toDomain() *domain.Loan {
	l := &domain.Loan{
		ID:        d.ID.Hex(),
		BookID:    d.BookID.Hex(),
		UserID:    d.UserID.Hex(),
		LoanDate:  d.LoanDate.UTC(),
		DueDate:   d.DueDate.UTC(),
		Status:    domain.LoanStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ReturnDate != nil {
		ts := d.ReturnDate.UTC()
		l.ReturnDate = &ts
	}
	return l
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	bookID, ok := parseID(l.BookID)
	if !ok {
		return domain.ErrBookNotFound
	}
	userID, ok := parseID(l.UserID)
	if !ok {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := loanDocument{
		BookID:     bookID,
		UserID:     userID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Status:     string(l.Status),
		CreatedAt:  l.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return storeErr("insert loan", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		l.ID = oid.Hex()
	}
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (*domain.Loan, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrLoanNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc loanDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, storeErr("find loan", err)
	}
	return doc.toDomain(), nil
}

func (r *LoanRepository) List(ctx context.Context, f ports.LoanFilter) ([]*domain.Loan, error) {
	filter := bson.M{}
	if f.UserID != "" {
		oid, ok := parseID(f.UserID)
		if !ok {
			return []*domain.Loan{}, nil
		}
		filter["user_id"] = oid
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, storeErr("find loans", err)
	}
	defer cur.Close(ctx)

	var docs []loanDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode loans", err)
	}
	loans := make([]*domain.Loan, 0, len(docs))
	for i := range docs {
		loans = append(loans, docs[i].toDomain())
	}
	return loans, nil
}

// MarkReturned only matches active loans, so a concurrent second return
// cannot re-stamp returnDate.
func (r *LoanRepository) MarkReturned(ctx context.Context, id string, at time.Time) (*domain.Loan, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrLoanNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := markReturnedQuery(oid, at)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc loanDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrLoanAlreadyReturned
		}
		return nil, storeErr("mark loan returned", err)
	}
	return doc.toDomain(), nil
}

// Reopen only matches returned loans so it cannot clobber a loan that was
// never stamped.
func (r *LoanRepository) Reopen(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrLoanNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := reopenQuery(oid)
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeErr("reopen loan", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func markReturnedQuery(oid primitive.ObjectID, at time.Time) (filter, update bson.M) {
	filter = bson.M{"_id": oid, "status": string(domain.LoanActive)}
	update = bson.M{"$set": bson.M{"status": string(domain.LoanReturned), "return_date": at.UTC()}}
	return filter, update
}

func reopenQuery(oid primitive.ObjectID) (filter, update bson.M) {
	filter = bson.M{"_id": oid, "status": string(domain.LoanReturned)}
	update = bson.M{
		"$set":   bson.M{"status": string(domain.LoanActive)},
		"$unset": bson.M{"return_date": ""},
	}
	return filter, update
}
