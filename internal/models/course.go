package models

// Subject is a single entry of a semester's curriculum.
type Subject struct {
	Name string `json:"name" validate:"required" label:"Subject name"`
}

// Semester holds the ordered subjects taught in one semester.
type Semester struct {
	Number   int       `json:"number" validate:"gt=0" label:"Semester number"`
	Subjects []Subject `json:"subjects"`
}

// Course is a programme with its curriculum. Course titles double as the
// department list used by students and attendance.
type Course struct {
	ID          string     `json:"_id,omitempty" form:"_id"`
	Title       string     `json:"title" form:"title" validate:"required" label:"Title"`
	Description string     `json:"description" form:"description"`
	Image       string     `json:"image" form:"-"`
	Semesters   []Semester `json:"semesters" form:"-"`
}

func (c Course) EntityID() string { return c.ID }

func (c Course) WithID(id string) Course {
	c.ID = id
	return c
}

func (c Course) Normalize() Course {
	fillNA(&c.Description)
	if c.Semesters == nil {
		c.Semesters = []Semester{}
	}
	for i := range c.Semesters {
		if c.Semesters[i].Subjects == nil {
			c.Semesters[i].Subjects = []Subject{}
		}
	}
	return c
}

func (c Course) Draft() Course {
	clearNA(&c.Description)
	return c
}

// HasSemester reports whether the course already lists the semester number.
func (c Course) HasSemester(number int) bool {
	for _, s := range c.Semesters {
		if s.Number == number {
			return true
		}
	}
	return false
}
