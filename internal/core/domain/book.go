package domain

import "time"

// Book is a catalog entry. AvailableCopies is owned by the loan ledger once
// the book exists; catalog edits only move it together with TotalCopies.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category,omitempty"`
	PublishYear     int       `json:"publishYear,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	Description     string    `json:"description,omitempty"`
	CoverImage      string    `json:"coverImage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OnLoan reports how many copies are currently lent out.
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// BookChanges is a partial catalog edit. Nil fields are left untouched.
type BookChanges struct {
	Title       *string
	Author      *string
	ISBN        *string
	Category    *string
	PublishYear *int
	TotalCopies *int
	Description *string
	CoverImage  *string
}

// Empty reports whether no field is set.
func (c BookChanges) Empty() bool {
	return c.Title == nil && c.Author == nil && c.ISBN == nil && c.Category == nil &&
		c.PublishYear == nil && c.TotalCopies == nil && c.Description == nil && c.CoverImage == nil
}
