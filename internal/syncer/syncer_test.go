package syncer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

type row struct {
	ID   string
	Name string
}

func (r row) EntityID() string { return r.ID }

func ids(list []row) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func assertUnique(t *testing.T, list []row) {
	t.Helper()
	seen := map[string]bool{}
	for _, r := range list {
		require.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestApplyLengthDelta(t *testing.T) {
	base := []row{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	created, err := Apply(base, Created(row{ID: "d", Name: "new"}))
	require.NoError(t, err)
	assert.Len(t, created, len(base)+1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(created))

	updated, err := Apply(base, Updated(row{ID: "b", Name: "renamed"}))
	require.NoError(t, err)
	assert.Len(t, updated, len(base))
	assert.Equal(t, "renamed", updated[1].Name)

	deleted, err := Apply(base, Deleted[row]("b"))
	require.NoError(t, err)
	assert.Len(t, deleted, len(base)-1)
	assert.Equal(t, []string{"a", "c"}, ids(deleted))

	for _, l := range [][]row{created, updated, deleted} {
		assertUnique(t, l)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	base := []row{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}
	snapshot := append([]row(nil), base...)

	_, err := Apply(base, Updated(row{ID: "a", Name: "changed"}))
	require.NoError(t, err)
	_, err = Apply(base, Deleted[row]("a"))
	require.NoError(t, err)

	assert.Equal(t, snapshot, base)
}

func TestApplyRejectsInvalidChanges(t *testing.T) {
	base := []row{{ID: "a"}}

	_, err := Apply(base, Created(row{Name: "draft"}))
	assert.ErrorIs(t, err, ErrDraft)

	_, err = Apply(base, Created(row{ID: "a"}))
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = Apply(base, Updated(row{ID: "zz"}))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = Apply(base, Deleted[row]("zz"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = Apply(base, Change[row]{Kind: Update, ID: "a", Record: row{ID: "b"}})
	assert.ErrorIs(t, err, ErrDraft)
}

func TestCollectionReplaceDropsDuplicatesAndDrafts(t *testing.T) {
	c := NewCollection[row]()
	dropped := c.Replace([]row{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}, {Name: "draft"}, {ID: "b"}})

	assert.Equal(t, 2, dropped)
	items := c.Items()
	assert.Equal(t, []string{"a", "b"}, ids(items))
	assert.Equal(t, "first", items[0].Name)
}

func TestCollectionTombstonesPreventResurrection(t *testing.T) {
	c := NewCollection[row]()
	c.Replace([]row{{ID: "a"}})

	require.NoError(t, c.Apply(Deleted[row]("a")))
	assert.True(t, c.Deleted("a"))

	err := c.Apply(Created(row{ID: "a"}))
	assert.True(t, errors.Is(err, appErrors.ErrDeleted))

	c.Replace([]row{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, []string{"b"}, ids(c.Items()))
}

func TestCollectionRevisionsAdvance(t *testing.T) {
	c := NewCollection[row]()
	c.Replace([]row{{ID: "a"}, {ID: "b"}})

	before := c.Revision("a")
	require.NotZero(t, before)
	require.NoError(t, c.Apply(Updated(row{ID: "a", Name: "x"})))
	after := c.Revision("a")
	assert.Greater(t, after, before)

	c.Replace([]row{{ID: "a", Name: "x"}, {ID: "b"}})
	assert.Equal(t, after, c.Revision("a"), "refetch keeps known revisions")

	_, rev, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, after, rev)
}

func TestCollectionConcurrentCreatesStayUnique(t *testing.T) {
	c := NewCollection[row]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Apply(Created(row{ID: fmt.Sprintf("id-%d", i%10)}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
	assertUnique(t, c.Items())
}
