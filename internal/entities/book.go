package entities

// Book title length bounds, inclusive.
const (
	BookTitleMinLength = 5
	BookTitleMaxLength = 20
)

// Book is the catalog entry persisted in the "book" table.
// ID is zero until the store assigns one on insert.
type Book struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"size:20;not null" json:"title"`
	Description *string `gorm:"size:255" json:"description"`
}

func (Book) TableName() string {
	return "book"
}

// IsNew reports whether the book has not been assigned an id yet.
func (b *Book) IsNew() bool {
	return b.ID == 0
}

// Equal reports whether b and other are the same book.
//
// Equality is by identity, not by value: two books with the same assigned
// id are equal whatever their titles and descriptions hold, and a book
// without an id is equal only to itself.
func (b *Book) Equal(other *Book) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	if b.IsNew() || other.IsNew() {
		return false
	}
	return b.ID == other.ID
}
