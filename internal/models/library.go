package models

// BookStatus tracks whether a book is on the shelf.
type BookStatus string

const (
	BookAvailable BookStatus = "Available"
	BookBorrowed  BookStatus = "Borrowed"
)

// Book is a library catalogue entry.
type Book struct {
	ID     string     `json:"_id,omitempty"`
	Title  string     `json:"title" validate:"required" label:"Title"`
	Author string     `json:"author" validate:"required" label:"Author"`
	ISBN   string     `json:"isbn" validate:"required" label:"ISBN"`
	Status BookStatus `json:"status" validate:"omitempty,oneof=Available Borrowed" label:"Status"`
}

func (b Book) EntityID() string { return b.ID }

func (b Book) WithID(id string) Book {
	b.ID = id
	return b
}

func (b Book) Normalize() Book {
	if b.Status == "" {
		b.Status = BookAvailable
	}
	return b
}

func (b Book) Draft() Book {
	if b.Status == "" {
		b.Status = BookAvailable
	}
	return b
}

// BorrowRecord ties a book to the student holding it.
type BorrowRecord struct {
	ID         string `json:"_id,omitempty"`
	BookID     string `json:"book_id" validate:"required" label:"Book"`
	StudentID  string `json:"student_id" validate:"required" label:"Student"`
	BorrowDate string `json:"borrow_date" validate:"required,day" label:"Borrow date"`
	ReturnDate string `json:"return_date,omitempty" validate:"omitempty,day" label:"Return date"`
}

func (r BorrowRecord) EntityID() string { return r.ID }

func (r BorrowRecord) WithID(id string) BorrowRecord {
	r.ID = id
	return r
}

func (r BorrowRecord) Normalize() BorrowRecord {
	r.BorrowDate = dayOrNA(r.BorrowDate)
	if r.ReturnDate != "" {
		r.ReturnDate = dayOrNA(r.ReturnDate)
	}
	return r
}

func (r BorrowRecord) Draft() BorrowRecord {
	clearNA(&r.BorrowDate, &r.ReturnDate)
	return r
}

// Open reports whether the book has not yet been returned.
func (r BorrowRecord) Open() bool {
	return r.ReturnDate == "" || r.ReturnDate == NotAvailable
}
