package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Event is a calendar entry on the scheduler.
type Event struct {
	ID        string      `json:"_id,omitempty"`
	Title     string      `json:"title" validate:"required" label:"Title"`
	Start     time.Time   `json:"start" validate:"required" label:"Start"`
	End       time.Time   `json:"end" validate:"required,gtefield=Start" label:"End"`
	AllDay    bool        `json:"allDay"`
	Color     string      `json:"color,omitempty"`
	TextColor string      `json:"textColor,omitempty"`
	TeacherID string      `json:"teacherId,omitempty"`
	Teacher   *TeacherRef `json:"teacher,omitempty"`
}

func (e Event) EntityID() string { return e.ID }

func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

func (e Event) Normalize() Event {
	if e.Teacher != nil && e.TeacherID == "" {
		e.TeacherID = e.Teacher.ID
	}
	return e
}

func (e Event) Draft() Event {
	e.Teacher = nil
	return e
}

// Overlaps reports whether the event intersects [from, to).
func (e Event) Overlaps(from, to time.Time) bool {
	end := e.End
	if end.Before(e.Start) {
		end = e.Start
	}
	if end.Equal(e.Start) {
		return !e.Start.Before(from) && e.Start.Before(to)
	}
	return e.Start.Before(to) && end.After(from)
}

type eventAlias Event

type eventWire struct {
	eventAlias
	TeacherID json.RawMessage `json:"teacherId,omitempty"`
}

// UnmarshalJSON accepts teacherId either as a plain id or as the populated
// teacher document the backend returns on reads.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Event(wire.eventAlias)
	e.TeacherID = ""
	raw := bytes.TrimSpace(wire.TeacherID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		return json.Unmarshal(raw, &e.TeacherID)
	}
	var ref TeacherRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return err
	}
	e.Teacher = &ref
	e.TeacherID = ref.ID
	return nil
}
