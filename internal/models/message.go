package models

// Message is a note exchanged between a parent and a teacher.
type Message struct {
	ID        string `json:"_id,omitempty"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient" validate:"required" label:"Teacher"`
	StudentID string `json:"student_id,omitempty"`
	Content   string `json:"content" validate:"required,notblank" label:"Message"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (m Message) EntityID() string { return m.ID }

func (m Message) WithID(id string) Message {
	m.ID = id
	return m
}

func (m Message) Normalize() Message {
	fillNA(&m.Sender)
	return m
}

func (m Message) Draft() Message {
	clearNA(&m.Sender)
	return m
}
