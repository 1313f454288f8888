package portal

import (
	"testing"

	"club-portal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventCollection(t *testing.T, seed []Event) (*Collection[int, Event], *storage.Store) {
	t.Helper()
	store := storage.NewStore(storage.NewMemory(), nil)
	return loadCollection(store, SlotEvents, eventKey, seed), store
}

func TestNextID(t *testing.T) {
	c, _ := newEventCollection(t, nil)
	assert.Equal(t, 1, nextID(c))

	c.append(Event{ID: 7, Title: "a"})
	c.append(Event{ID: 3, Title: "b"})
	assert.Equal(t, 8, nextID(c))

	c.removeWhere(func(e Event) bool { return e.ID == 7 })
	assert.Equal(t, 4, nextID(c))
}

func TestCollectionRoundTrip(t *testing.T) {
	c, store := newEventCollection(t, nil)
	c.append(Event{ID: 1, Title: "Workshop", Date: "2025-06-01", Description: "Hands-on"})
	c.append(Event{ID: 2, Title: "Hackathon", Date: "2025-07-15", Description: "Teams"})

	reloaded := loadCollection(store, SlotEvents, eventKey, []Event{{ID: 99}})
	assert.Equal(t, c.Items(), reloaded.Items())
}

func TestCollectionReplace(t *testing.T) {
	c, store := newEventCollection(t, []Event{{ID: 1, Title: "old"}})

	ok := c.replace(1, func(e Event) Event {
		e.Title = "new"
		return e
	})
	require.True(t, ok)
	assert.Equal(t, "new", c.Items()[0].Title)
	assert.Equal(t, c.Items(), storage.Load(store, SlotEvents, []Event(nil)))

	assert.False(t, c.replace(2, func(e Event) Event { return e }))
}

func TestCollectionItemsIsACopy(t *testing.T) {
	c, _ := newEventCollection(t, []Event{{ID: 1, Title: "a"}})
	items := c.Items()
	items[0].Title = "mutated"

	e, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, "a", e.Title)
}

func TestRemoveWhereNoMatchDoesNotSave(t *testing.T) {
	c, store := newEventCollection(t, []Event{{ID: 1}})
	assert.Zero(t, c.removeWhere(func(Event) bool { return false }))
	_, ok, err := store.Raw(SlotEvents)
	require.NoError(t, err)
	assert.False(t, ok)
}
