package models

// SchoolSettings is the system-wide configuration edited by admins.
type SchoolSettings struct {
	SchoolName   string `json:"school_name" validate:"required" label:"School name"`
	SessionStart string `json:"session_start" validate:"required,day,dayonorbefore=SessionEnd" label:"Session start"`
	SessionEnd   string `json:"session_end" validate:"required,day" label:"Session end"`
}

// Normalize reduces the session bounds to calendar days.
func (s SchoolSettings) Normalize() SchoolSettings {
	if day, ok := ParseDay(s.SessionStart); ok {
		s.SessionStart = day.Format(DayLayout)
	}
	if day, ok := ParseDay(s.SessionEnd); ok {
		s.SessionEnd = day.Format(DayLayout)
	}
	return s
}
