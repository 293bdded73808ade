package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_DefaultsToAll(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)

	assert.Equal(t, All, v.Filter("status"))
	assert.Equal(t, All, v.Filter("city"))
	assert.Equal(t, []string{"status", "city"}, v.FilterNames())
	assert.Len(t, v.Visible(), 4)

	f := v.Frame()
	assert.False(t, f.DetailOpen)
	assert.False(t, f.FormOpen)
	assert.Nil(t, f.Selected)
	assert.Equal(t, 4, f.Total)
}

func TestView_QueryAndFilters(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)

	v.SetQuery("Иван")
	assert.Equal(t, []string{"1", "3"}, ids(v.Visible()))

	require.NoError(t, v.SetFilter("status", "active"))
	assert.Equal(t, []string{"1"}, ids(v.Visible()))

	require.NoError(t, v.SetFilter("status", ""))
	assert.Equal(t, All, v.Filter("status"))

	err := v.SetFilter("priority", "high")
	assert.True(t, errors.Is(err, ErrUnknownFilter))

	require.NoError(t, v.SetFilter("city", "Москва"))
	v.ResetFilters()
	assert.Equal(t, All, v.Filter("city"))
	assert.Equal(t, "Иван", v.Query(), "reset keeps the query")
}

func TestView_Selection(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)

	require.NoError(t, v.SelectID("2"))
	require.NoError(t, v.SelectID("4"))
	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "4", sel.ID, "select overwrites the previous selection")

	// Selection is independent of what is visible.
	v.SetQuery("nonexistent")
	f := v.Frame()
	assert.True(t, f.DetailOpen)
	assert.Equal(t, 0, f.Count)
	require.Len(t, f.Detail, 2)
	assert.Equal(t, Cell{Header: "Клиент", Value: "Елена Козлова"}, f.Detail[0])

	v.Clear()
	_, ok = v.Selected()
	assert.False(t, ok)
	assert.False(t, v.Frame().DetailOpen)

	err := v.SelectID("99")
	assert.True(t, errors.Is(err, ErrRecordNotFound))
	_, ok = v.Selected()
	assert.False(t, ok, "failed lookup leaves selection empty")
}

func TestView_SelectThenClearAlwaysEmpty(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)
	for _, id := range []string{"1", "3", "2"} {
		require.NoError(t, v.SelectID(id))
		v.OpenForm()
		v.SetQuery(id)
	}
	v.Clear()
	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestView_FormScaffold(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)
	v.OpenForm()
	assert.True(t, v.Frame().FormOpen)
	v.OpenForm()
	assert.True(t, v.Frame().FormOpen)
	v.CloseForm()
	assert.False(t, v.Frame().FormOpen)
	assert.Len(t, v.Visible(), 4, "form never touches the collection")
}

func TestView_FrameRows(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)
	require.NoError(t, v.SetFilter("status", "lead"))

	f := v.Frame()
	assert.Equal(t, []string{"Клиент", "Компания"}, f.Headers)
	assert.Equal(t, []string{"3"}, f.IDs)
	assert.Equal(t, [][]string{{"Алексей Иванов", `ООО "ТехноСфера"`}}, f.Rows)
	assert.Equal(t, map[string]string{"status": "lead", "city": All}, f.Filters)

	// Frame filters are a snapshot.
	f.Filters["status"] = "active"
	assert.Equal(t, "lead", v.Filter("status"))
}

func TestView_FrameSuggestion(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)
	v.SetQuery("Козлава")
	f := v.Frame()
	assert.Equal(t, 0, f.Count)
	assert.Equal(t, "Козлова", f.Suggestion)
}

func TestView_Options(t *testing.T) {
	v := NewView("clients", fixture(), clientSchema)

	status, err := v.Options("status")
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "inactive", "lead"}, status)

	city, err := v.Options("city")
	require.NoError(t, err)
	assert.Equal(t, []string{"Москва", "Санкт-Петербург", "Новосибирск"}, city)

	_, err = v.Options("nope")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestCollection(t *testing.T) {
	records := fixture()
	c := NewCollection("clients", records, clientSchema)
	records[0].Name = "changed"

	got, err := c.Find("1")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", got.Name)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	list := c.List(Query{Text: "иван", Filters: map[string]string{"status": "lead"}}).([]client)
	assert.Equal(t, []string{"3"}, ids(list))

	headers, rows := c.Table(Query{Filters: map[string]string{"city": "Москва"}})
	assert.Equal(t, []string{"Клиент", "Компания"}, headers)
	assert.Len(t, rows, 2)

	board, err := c.Board("status", Query{})
	require.NoError(t, err)
	groups := board.([]Group[client])
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"active", "inactive", "lead"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})
	assert.Equal(t, []string{"1", "2"}, ids(groups[0].Records))

	_, err = c.Board("nope", Query{})
	assert.ErrorIs(t, err, ErrUnknownFilter)

	// Views opened from one collection do not share state.
	a, b := c.NewView(), c.NewView()
	a.SetQuery("Мария")
	assert.Equal(t, 1, a.Frame().Count)
	assert.Equal(t, 4, b.Frame().Count)
}
