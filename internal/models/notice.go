package models

import "time"

// NoticeLevel grades an inline notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a dismissible, non-blocking message attached to a page.
type Notice struct {
	ID        string      `json:"id"`
	Page      string      `json:"page"`
	Level     NoticeLevel `json:"level"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}
