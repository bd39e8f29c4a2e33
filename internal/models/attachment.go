package models

import "io"

// MaxPhotoSize bounds profile photo uploads.
const MaxPhotoSize = 10 << 20

// Attachment is a file forwarded to the backend as a multipart part.
type Attachment struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
