package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{col: db.Collection(collectionBooks)}
}

type bookDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	ISBN            string             `bson:"isbn"`
	Category        string             `bson:"category,omitempty"`
	PublishYear     int                `bson:"publish_year,omitempty"`
	TotalCopies     int                `bson:"total_copies"`
	AvailableCopies int                `bson:"available_copies"`
	Description     string             `bson:"description,omitempty"`
	CoverImage      string             `bson:"cover_image,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d *bookDocument) toDomain() *domain.Book {
	return &domain.Book{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		Category:        d.Category,
		PublishYear:     d.PublishYear,
		TotalCopies:     d.TotalCopies,
		AvailableCopies: d.AvailableCopies,
		Description:     d.Description,
		CoverImage:      d.CoverImage,
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

// Create inserts a new book document.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bookDocument{
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Category:        b.Category,
		PublishYear:     b.PublishYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Description:     b.Description,
		CoverImage:      b.CoverImage,
		CreatedAt:       b.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateISBN
		}
		return storeErr("insert book", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrBookNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bookDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBookNotFound
		}
		return nil, storeErr("find book", err)
	}
	return doc.toDomain(), nil
}

func (r *BookRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Book, error) {
	out := make(map[string]*domain.Book)
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}

	books, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

func (r *BookRepository) FindAll(ctx context.Context) ([]*domain.Book, error) {
	return r.find(ctx, bson.M{})
}

func (r *BookRepository) find(ctx context.Context, filter bson.M) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, storeErr("find books", err)
	}
	defer cur.Close(ctx)

	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode books", err)
	}
	books := make([]*domain.Book, 0, len(docs))
	for i := range docs {
		books = append(books, docs[i].toDomain())
	}
	return books, nil
}

// Update applies a partial edit as one pipeline update so a TotalCopies
// change and the matching AvailableCopies shift cannot interleave with a loan.
func (r *BookRepository) Update(ctx context.Context, id string, c domain.BookChanges) (*domain.Book, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrBookNotFound
	}

	filter, pipeline := updateQuery(oid, c)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookDocument
	err := r.col.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateISBN
		}
		if !isNoDocuments(err) {
			return nil, storeErr("update book", err)
		}
		if c.TotalCopies == nil {
			return nil, domain.ErrBookNotFound
		}
		// Either the book is gone or the shift would go negative.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrCopiesOnLoan
	}
	return doc.toDomain(), nil
}

func (r *BookRepository) DeleteByID(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrBookNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete book", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// ReserveCopy is the decrement-if-positive half of the availability counter.
func (r *BookRepository) ReserveCopy(ctx context.Context, id string) (*domain.Book, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrBookNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := reserveQuery(oid)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, storeErr("reserve copy", err)
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrBookUnavailable
}

// ReleaseCopy is the increment-capped half of the availability counter.
func (r *BookRepository) ReleaseCopy(ctx context.Context, id string) (bool, error) {
	oid, ok := parseID(id)
	if !ok {
		return false, domain.ErrBookNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := releaseQuery(oid)
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, storeErr("release copy", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return false, findErr
	}
	return false, nil
}

// updateQuery builds a pipeline update so the total_copies change and the
// available_copies shift are computed from the same stored values. String
// fields are wrapped in $literal so a "$title" value is not read as a path.
func updateQuery(oid primitive.ObjectID, c domain.BookChanges) (bson.M, mongo.Pipeline) {
	set := bson.M{}
	setIf := func(field string, v any, present bool) {
		if present {
			set[field] = bson.M{"$literal": v}
		}
	}
	setIf("title", deref(c.Title), c.Title != nil)
	setIf("author", deref(c.Author), c.Author != nil)
	setIf("isbn", deref(c.ISBN), c.ISBN != nil)
	setIf("category", deref(c.Category), c.Category != nil)
	setIf("description", deref(c.Description), c.Description != nil)
	setIf("cover_image", deref(c.CoverImage), c.CoverImage != nil)
	if c.PublishYear != nil {
		set["publish_year"] = *c.PublishYear
	}

	filter := bson.M{"_id": oid}
	if c.TotalCopies != nil {
		// available + (newTotal - total)
		shifted := bson.M{"$add": bson.A{"$available_copies", bson.M{"$subtract": bson.A{*c.TotalCopies, "$total_copies"}}}}
		set["total_copies"] = *c.TotalCopies
		set["available_copies"] = shifted
		filter["$expr"] = bson.M{"$gte": bson.A{shifted, 0}}
	}
	return filter, mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// reserveQuery only matches a book with a copy on the shelf.
func reserveQuery(oid primitive.ObjectID) (filter, update bson.M) {
	filter = bson.M{"_id": oid, "available_copies": bson.M{"$gt": 0}}
	update = bson.M{"$inc": bson.M{"available_copies": -1}}
	return filter, update
}

// releaseQuery never lets available_copies pass total_copies.
func releaseQuery(oid primitive.ObjectID) (filter, update bson.M) {
	filter = bson.M{
		"_id":   oid,
		"$expr": bson.M{"$lt": bson.A{"$available_copies", "$total_copies"}},
	}
	update = bson.M{"$inc": bson.M{"available_copies": 1}}
	return filter, update
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
