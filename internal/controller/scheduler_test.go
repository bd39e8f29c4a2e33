package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/models"
)

type mockDirectory struct {
	teachers []models.TeacherRef
	calls    int
}

func (m *mockDirectory) Teachers(ctx context.Context) ([]models.TeacherRef, error) {
	m.calls++
	return m.teachers, nil
}

func fixedClock() time.Time {
	return time.Date(2025, time.June, 12, 15, 30, 0, 0, time.UTC)
}

func newScheduler(t *testing.T, events ...models.Event) (*Scheduler, *mockDirectory) {
	t.Helper()
	src := &mockSource[models.Event]{rows: events}
	list := NewList[models.Event]("scheduler", src, nil, nil, nil)
	require.NoError(t, list.Mount(context.Background()))
	dir := &mockDirectory{teachers: []models.TeacherRef{{ID: "t1", Username: "jdoe", FirstName: "Jane", LastName: "Doe"}}}
	return NewScheduler(list, dir, fixedClock, nil), dir
}

func at(day, hour int) time.Time {
	return time.Date(2025, time.June, day, hour, 0, 0, 0, time.UTC)
}

func TestSchedulerStartsInMonthViewOnToday(t *testing.T) {
	s, _ := newScheduler(t)
	state := s.State()
	assert.Equal(t, ViewMonth, state.View)
	assert.Equal(t, at(12, 0), state.Date)
	assert.Equal(t, at(1, 0), state.RangeStart)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), state.RangeEnd)
}

func TestSchedulerNavigateStepsByView(t *testing.T) {
	s, _ := newScheduler(t)

	require.NoError(t, s.Navigate(NavigateNext, time.Time{}))
	assert.Equal(t, time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC), s.State().Date)

	require.NoError(t, s.SetView(ViewWeek))
	require.NoError(t, s.Navigate(NavigatePrev, time.Time{}))
	assert.Equal(t, time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC), s.State().Date)

	require.NoError(t, s.SetView(ViewDay))
	require.NoError(t, s.Navigate(NavigatePrev, time.Time{}))
	assert.Equal(t, time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC), s.State().Date)

	require.NoError(t, s.Navigate(NavigateToday, time.Time{}))
	assert.Equal(t, at(12, 0), s.State().Date)

	require.NoError(t, s.Navigate(NavigateDate, at(20, 9)))
	assert.Equal(t, at(20, 0), s.State().Date)

	assert.Error(t, s.Navigate("sideways", time.Time{}))
	assert.Error(t, s.SetView("year"))
}

func TestSchedulerMonthStepClampsDay(t *testing.T) {
	d := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), addMonths(d, 1))
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), addMonths(d, -1))
}

func TestSchedulerWeekRangeStartsOnSunday(t *testing.T) {
	s, _ := newScheduler(t)
	require.NoError(t, s.SetView(ViewWeek))
	from, to := s.VisibleRange()
	assert.Equal(t, at(8, 0), from)
	assert.Equal(t, at(15, 0), to)
}

func TestSchedulerVisibleEvents(t *testing.T) {
	s, _ := newScheduler(t,
		models.Event{ID: "e1", Title: "Inside", Start: at(12, 9), End: at(12, 10)},
		models.Event{ID: "e2", Title: "Other day", Start: at(13, 9), End: at(13, 10)},
		models.Event{ID: "e3", Title: "Spanning", Start: at(11, 9), End: at(14, 10)},
	)
	require.NoError(t, s.SetView(ViewDay))

	var ids []string
	for _, e := range s.VisibleEvents() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"e1", "e3"}, ids)
}

func TestSelectSlotAllDayRule(t *testing.T) {
	s, _ := newScheduler(t)

	f := s.SelectSlot(at(12, 0), at(13, 0), SlotActionSelect)
	assert.True(t, f.Value().AllDay)
	assert.Equal(t, DefaultEventColor, f.Value().Color)
	assert.Equal(t, DefaultEventTextColor, f.Value().TextColor)
	assert.Empty(t, f.ID())

	assert.False(t, s.SelectSlot(at(12, 9), at(12, 10), SlotActionSelect).Value().AllDay)
	assert.False(t, s.SelectSlot(at(12, 0), at(13, 0), "click").Value().AllDay)
}

func TestSelectEventResolvesTeacherLabel(t *testing.T) {
	s, dir := newScheduler(t,
		models.Event{ID: "e1", Title: "Populated", Start: at(12, 9), End: at(12, 10), TeacherID: "t1",
			Teacher: &models.TeacherRef{ID: "t1", Username: "jdoe", FirstName: "Jane", LastName: "Doe"}},
		models.Event{ID: "e2", Title: "Plain", Start: at(12, 9), End: at(12, 10), TeacherID: "t1"},
	)

	sel, err := s.SelectEvent(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe (jdoe)", sel.TeacherLabel)
	assert.Equal(t, "e1", sel.Form.ID())
	assert.Nil(t, sel.Form.Value().Teacher)
	assert.Zero(t, dir.calls)

	sel, err = s.SelectEvent(context.Background(), "e2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe (jdoe)", sel.TeacherLabel)
	assert.Equal(t, 1, dir.calls)

	_, err = s.SelectEvent(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSchedulerSaveRejectsEndBeforeStart(t *testing.T) {
	s, _ := newScheduler(t)
	f := s.SelectSlot(at(12, 10), at(12, 9), "click")
	draft := f.Value()
	draft.Title = "Backwards"
	f.Set(draft)

	_, err := s.Events().Save(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, "End must not be before Start", err.Error())
}
