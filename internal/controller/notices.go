package controller

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// maxNoticesPerPage bounds how many undismissed notices a page keeps.
const maxNoticesPerPage = 20

// Notices is the per-workspace board of inline page notices.
type Notices struct {
	mu     sync.Mutex
	byPage map[string][]models.Notice
	now    func() time.Time
}

// NewNotices returns an empty board.
func NewNotices() *Notices {
	return &Notices{byPage: make(map[string][]models.Notice), now: time.Now}
}

// Post adds a notice to page and returns it.
func (n *Notices) Post(page string, level models.NoticeLevel, code, message string) models.Notice {
	notice := models.Notice{
		ID:        uuid.NewString(),
		Page:      page,
		Level:     level,
		Code:      code,
		Message:   message,
		CreatedAt: n.now().UTC(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	list := append(n.byPage[page], notice)
	if len(list) > maxNoticesPerPage {
		list = list[len(list)-maxNoticesPerPage:]
	}
	n.byPage[page] = list
	return notice
}

// Error posts err as an error notice, using its code and message when it
// is an application error.
func (n *Notices) Error(page string, err error) models.Notice {
	appErr := appErrors.FromError(err)
	return n.Post(page, models.NoticeError, appErr.Code, appErr.Message)
}

// List returns the pending notices of page, oldest first.
func (n *Notices) List(page string) []models.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.Notice, len(n.byPage[page]))
	copy(out, n.byPage[page])
	return out
}

// Dismiss removes a notice. It returns false when nothing matched.
func (n *Notices) Dismiss(page, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.byPage[page]
	for i, notice := range list {
		if notice.ID == id {
			n.byPage[page] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}
