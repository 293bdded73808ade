package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/celerix-admin/pkg/listing"
)

var now = time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

func sample() Dataset {
	return Dataset{
		Stats: []Stat{
			{Title: "Всего клиентов", Value: "1,234", Change: "+12.5%", Trend: "up"},
			{Title: "Выручка (мес)", Value: "₽2,450,000", Change: "+15.3%", Trend: "up"},
		},
		Revenue: []RevenuePoint{
			{Month: "Янв", Revenue: 1000, Expenses: 600},
			{Month: "Фев", Revenue: 1500, Expenses: 700},
		},
		Leads: []LeadsPoint{
			{Date: "01.12", Leads: 40, Converted: 10},
			{Date: "02.12", Leads: 60, Converted: 15},
		},
		ServiceTypes: []ServiceType{
			{Name: "Веб-разработка", Share: 35, Revenue: 850000},
			{Name: "Дизайн", Share: 25, Revenue: 600000},
		},
		Cities: []CityStat{
			{City: "Москва", Clients: 450, Revenue: 1200000},
			{City: "Казань", Clients: 120, Revenue: 300000},
		},
		ClientTypes: []ClientType{
			{Type: "Корпоративные", Count: 45, Revenue: 1500000},
			{Type: "Стартапы", Count: 89, Revenue: 450000},
		},
	}
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter(now)
	assert.Equal(t, Filter{
		From:       "2025-11-01",
		To:         "2025-12-01",
		City:       listing.All,
		Service:    listing.All,
		ClientType: listing.All,
	}, f)
}

func TestNormalize(t *testing.T) {
	f, err := Filter{City: "Москва"}.Normalize(now)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-01", f.From)
	assert.Equal(t, "Москва", f.City)
	assert.Equal(t, listing.All, f.Service)

	_, err = Filter{From: "2025-12-05", To: "2025-12-01"}.Normalize(now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Filter{From: "01.12.2025"}.Normalize(now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Filter{From: "2025-12-01", To: "2025-12-01"}.Normalize(now)
	assert.NoError(t, err)
}

func TestApply(t *testing.T) {
	d := sample()

	v, err := Apply(d, Filter{}, now)
	require.NoError(t, err)
	assert.Equal(t, d.Cities, v.Dataset.Cities)
	assert.Equal(t, d.Stats, v.Dataset.Stats)

	v, err = Apply(d, Filter{City: "Казань", Service: "Дизайн", ClientType: "Нет такого"}, now)
	require.NoError(t, err)
	require.Len(t, v.Dataset.Cities, 1)
	assert.Equal(t, "Казань", v.Dataset.Cities[0].City)
	require.Len(t, v.Dataset.ServiceTypes, 1)
	assert.Equal(t, 25, v.Dataset.ServiceTypes[0].Share)
	assert.NotNil(t, v.Dataset.ClientTypes)
	assert.Empty(t, v.Dataset.ClientTypes)

	// The source dataset is left untouched.
	assert.Len(t, d.Cities, 2)

	_, err = Apply(d, Filter{From: "2026-01-01", To: "2025-01-01"}, now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTotals(t *testing.T) {
	v, err := Apply(sample(), Filter{}, now)
	require.NoError(t, err)
	assert.Equal(t, Totals{
		Revenue:        2500,
		Expenses:       1300,
		Profit:         1200,
		Leads:          100,
		Converted:      25,
		ConversionRate: 0.25,
	}, v.Totals)

	v, err = Apply(Dataset{}, Filter{}, now)
	require.NoError(t, err)
	assert.Zero(t, v.Totals.ConversionRate)
}

func TestOptions(t *testing.T) {
	opts := Options(sample())
	assert.Equal(t, []string{"Москва", "Казань"}, opts["city"])
	assert.Equal(t, []string{"Веб-разработка", "Дизайн"}, opts["service"])
	assert.Equal(t, []string{"Корпоративные", "Стартапы"}, opts["client_type"])
}

func TestReport(t *testing.T) {
	table, name := Report(sample(), now)
	assert.Equal(t, "dashboard-report-2025-12-01", name)
	assert.Equal(t, "Отчёт по дашборду", table.Title)
	assert.Equal(t, []string{"Метрика", "Значение", "Изменение"}, table.Headers)
	assert.Equal(t, [][]string{
		{"Всего клиентов", "1,234", "+12.5%"},
		{"Выручка (мес)", "₽2,450,000", "+15.3%"},
	}, table.Rows)

	table, _ = Report(Dataset{}, now)
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
}
