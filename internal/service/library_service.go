package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// BookStatusAll disables the book status filter.
const BookStatusAll = "All"

// LibraryService backs the library page: the catalogue and its loans.
type LibraryService struct {
	*EntityService[models.Book]
	now func() time.Time
}

// NewLibraryService constructs a LibraryService.
func NewLibraryService(logger *zap.Logger) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryService{
		EntityService: &EntityService[models.Book]{
			list: func(ws *Workspace) *controller.List[models.Book] { return ws.Books },
			match: func(b models.Book, q string) bool {
				return containsFold(b.Title, q) || containsFold(b.Author, q) || strings.EqualFold(b.ISBN, q)
			},
			onCreate: func(draft models.Book) models.Book {
				draft.Status = models.BookAvailable
				return draft
			},
			onUpdate: func(stored, draft models.Book) models.Book {
				draft.Status = stored.Status
				return draft
			},
			logger: logger,
		},
		now: time.Now,
	}
}

// openBorrowGuard refuses to delete a book that is still lent out.
func openBorrowGuard(ws *Workspace) controller.DeleteGuard[models.Book] {
	return func(ctx context.Context, book models.Book) error {
		ws.Borrows.Ensure(ctx)
		if book.Status == models.BookBorrowed {
			return appErrors.Clone(appErrors.ErrConflict, "Cannot delete a borrowed book.")
		}
		if _, ok := latestOpenBorrow(ws.Borrows.Rows(), book.ID); ok {
			return appErrors.Clone(appErrors.ErrConflict, "Cannot delete a borrowed book.")
		}
		return nil
	}
}

// Filter returns the books in the given status; All or empty returns every book.
func (s *LibraryService) Filter(ctx context.Context, ws *Workspace, status, query string) ([]models.Book, error) {
	rows := s.Rows(ctx, ws, query)
	switch status {
	case "", BookStatusAll:
		return rows, nil
	case string(models.BookAvailable), string(models.BookBorrowed):
	default:
		return nil, appErrors.Validation("Status must be one of All, Available, Borrowed", map[string]string{"status": "invalid"})
	}
	out := make([]models.Book, 0, len(rows))
	for _, b := range rows {
		if string(b.Status) == status {
			out = append(out, b)
		}
	}
	return out, nil
}

// Borrows lists the loan records.
func (s *LibraryService) Borrows(ctx context.Context, ws *Workspace) []models.BorrowRecord {
	ws.Borrows.Ensure(ctx)
	return ws.Borrows.Rows()
}

// Borrow lends an available book to a student.
func (s *LibraryService) Borrow(ctx context.Context, ws *Workspace, bookID, studentID string) (*models.Book, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Validation("Please select a student.", map[string]string{"student_id": "Student is required"})
	}
	book, revision, err := s.book(ctx, ws, bookID)
	if err != nil {
		return nil, err
	}
	if book.Status != models.BookAvailable {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Book is not available.")
	}

	ws.Borrows.Ensure(ctx)
	if _, open := latestOpenBorrow(ws.Borrows.Rows(), bookID); open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Book is not available.")
	}
	record := models.BorrowRecord{BookID: bookID, StudentID: studentID, BorrowDate: models.Today(s.now())}
	saved, err := ws.Borrows.Save(ctx, ws.Borrows.NewForm(record))
	if err != nil {
		return nil, err
	}
	lent, err := s.setStatus(ctx, ws, book, revision, models.BookBorrowed)
	if err != nil {
		s.abandonLoan(ctx, ws, saved.Record, bookID, studentID)
		return nil, err
	}
	return lent, nil
}

// abandonLoan deletes a loan whose book could not be marked Borrowed, so no
// open loan is left on a book that is still on the shelf. When that fails
// too, both lists are refetched and the user is told.
func (s *LibraryService) abandonLoan(ctx context.Context, ws *Workspace, loan models.BorrowRecord, bookID, studentID string) {
	loanID := loan.ID
	if loanID == "" {
		for _, r := range ws.Borrows.Rows() {
			if r.BookID == bookID && r.StudentID == studentID && r.Open() {
				loanID = r.ID
			}
		}
	}
	if loanID != "" {
		err := ws.Borrows.Delete(ctx, loanID)
		if err == nil {
			return
		}
		s.logger.Warn("failed to abandon loan", zap.String("loan_id", loanID), zap.Error(err))
	}
	_ = ws.Borrows.Mount(ctx)
	_ = ws.Books.Mount(ctx)
	ws.Books.Notices().Post(PageLibrary, models.NoticeWarning, "LOAN_INCONSISTENT",
		"The loan was recorded but the book could not be marked as borrowed. Please check the library records.")
}

// Return closes the latest open loan of a book and puts it back on the shelf.
func (s *LibraryService) Return(ctx context.Context, ws *Workspace, bookID string) (*models.Book, error) {
	book, revision, err := s.book(ctx, ws, bookID)
	if err != nil {
		return nil, err
	}
	ws.Borrows.Ensure(ctx)
	loan, ok := latestOpenBorrow(ws.Borrows.Rows(), bookID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No active borrow record found.")
	}

	f, err := ws.Borrows.OpenEdit(loan.ID)
	if err != nil {
		return nil, err
	}
	closed := f.Value()
	closed.ReturnDate = models.Today(s.now())
	f.Set(closed)
	if _, err := ws.Borrows.Save(ctx, f); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, ws, book, revision, models.BookAvailable)
}

func (s *LibraryService) book(ctx context.Context, ws *Workspace, id string) (models.Book, uint64, error) {
	ws.Books.Ensure(ctx)
	book, revision, ok := ws.Books.Get(id)
	if !ok {
		return models.Book{}, 0, appErrors.Clone(appErrors.ErrNotFound, "book not found")
	}
	return book, revision, nil
}

func (s *LibraryService) setStatus(ctx context.Context, ws *Workspace, book models.Book, revision uint64, status models.BookStatus) (*models.Book, error) {
	draft := book.Draft()
	draft.Status = status
	result, err := s.transition(ctx, ws, book.ID, revision, draft)
	if err != nil {
		return nil, err
	}
	return &result.Record, nil
}

// latestOpenBorrow returns the most recent loan of bookID not yet returned.
func latestOpenBorrow(records []models.BorrowRecord, bookID string) (models.BorrowRecord, bool) {
	var (
		latest models.BorrowRecord
		found  bool
	)
	for _, r := range records {
		if r.BookID != bookID || !r.Open() {
			continue
		}
		if !found || r.BorrowDate >= latest.BorrowDate {
			latest, found = r, true
		}
	}
	return latest, found
}
