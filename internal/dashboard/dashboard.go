// Package dashboard serves the analytics page: summary statistics, chart
// series and the report handed to the export writers.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
)

const dateLayout = "2006-01-02"

// ErrInvalidRange is returned when a filter's dates are malformed or reversed.
var ErrInvalidRange = errors.New("invalid date range")

// Stat is one summary card.
type Stat struct {
	Title  string `json:"title" yaml:"title"`
	Value  string `json:"value" yaml:"value"`
	Change string `json:"change" yaml:"change"`
	Trend  string `json:"trend" yaml:"trend"`
}

type RevenuePoint struct {
	Month    string `json:"month" yaml:"month"`
	Revenue  int64  `json:"revenue" yaml:"revenue"`
	Expenses int64  `json:"expenses" yaml:"expenses"`
}

type TaskStat struct {
	Status string `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
}

type ChurnPoint struct {
	Month     string `json:"month" yaml:"month"`
	New       int    `json:"new" yaml:"new"`
	Churn     int    `json:"churn" yaml:"churn"`
	Retention int    `json:"retention" yaml:"retention"`
}

type ServiceType struct {
	Name    string `json:"name" yaml:"name"`
	Share   int    `json:"share" yaml:"share"`
	Revenue int64  `json:"revenue" yaml:"revenue"`
}

type LeadsPoint struct {
	Date      string `json:"date" yaml:"date"`
	Leads     int    `json:"leads" yaml:"leads"`
	Converted int    `json:"converted" yaml:"converted"`
}

type CityStat struct {
	City    string `json:"city" yaml:"city"`
	Clients int    `json:"clients" yaml:"clients"`
	Revenue int64  `json:"revenue" yaml:"revenue"`
}

type ClientType struct {
	Type    string `json:"type" yaml:"type"`
	Count   int    `json:"count" yaml:"count"`
	Revenue int64  `json:"revenue" yaml:"revenue"`
}

// Dataset is every series shown on the dashboard.
type Dataset struct {
	Stats        []Stat         `json:"stats" yaml:"stats"`
	Revenue      []RevenuePoint `json:"revenue" yaml:"revenue"`
	Tasks        []TaskStat     `json:"tasks" yaml:"tasks"`
	Churn        []ChurnPoint   `json:"churn" yaml:"churn"`
	ServiceTypes []ServiceType  `json:"service_types" yaml:"service_types"`
	Leads        []LeadsPoint   `json:"leads" yaml:"leads"`
	Cities       []CityStat     `json:"cities" yaml:"cities"`
	ClientTypes  []ClientType   `json:"client_types" yaml:"client_types"`
}

// Totals are derived from the visible series.
type Totals struct {
	Revenue        int64   `json:"revenue"`
	Expenses       int64   `json:"expenses"`
	Profit         int64   `json:"profit"`
	Leads          int     `json:"leads"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Filter narrows the breakdowns. City, Service and ClientType take
// listing.All to disable them.
type Filter struct {
	From       string `json:"from" form:"from"`
	To         string `json:"to" form:"to"`
	City       string `json:"city" form:"city"`
	Service    string `json:"service" form:"service"`
	ClientType string `json:"client_type" form:"client_type"`
}

// View is the dashboard as rendered for one filter.
type View struct {
	Filter  Filter  `json:"filter"`
	Dataset Dataset `json:"dataset"`
	Totals  Totals  `json:"totals"`
}

// DefaultFilter covers the month up to now with every breakdown unfiltered.
func DefaultFilter(now time.Time) Filter {
	return Filter{
		From:       now.AddDate(0, -1, 0).Format(dateLayout),
		To:         now.Format(dateLayout),
		City:       listing.All,
		Service:    listing.All,
		ClientType: listing.All,
	}
}

// Normalize fills empty fields from DefaultFilter and checks the date range.
func (f Filter) Normalize(now time.Time) (Filter, error) {
	def := DefaultFilter(now)
	if f.From == "" {
		f.From = def.From
	}
	if f.To == "" {
		f.To = def.To
	}
	if f.City == "" {
		f.City = listing.All
	}
	if f.Service == "" {
		f.Service = listing.All
	}
	if f.ClientType == "" {
		f.ClientType = listing.All
	}

	from, err := time.Parse(dateLayout, f.From)
	if err != nil {
		return f, fmt.Errorf("%w: from %q", ErrInvalidRange, f.From)
	}
	to, err := time.Parse(dateLayout, f.To)
	if err != nil {
		return f, fmt.Errorf("%w: to %q", ErrInvalidRange, f.To)
	}
	if from.After(to) {
		return f, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, f.From, f.To)
	}
	return f, nil
}

var cityListing = listing.Schema[CityStat]{
	Categories: []listing.Category[CityStat]{
		{Name: "city", Value: func(c CityStat) string { return c.City }},
	},
}

var serviceListing = listing.Schema[ServiceType]{
	Categories: []listing.Category[ServiceType]{
		{Name: "service", Value: func(s ServiceType) string { return s.Name }},
	},
}

var clientTypeListing = listing.Schema[ClientType]{
	Categories: []listing.Category[ClientType]{
		{Name: "client_type", Value: func(c ClientType) string { return c.Type }},
	},
}

// Apply narrows d by f and computes the totals.
func Apply(d Dataset, f Filter, now time.Time) (View, error) {
	f, err := f.Normalize(now)
	if err != nil {
		return View{}, err
	}

	out := d
	out.Cities = listing.Filter(d.Cities, "", map[string]string{"city": f.City}, cityListing)
	out.ServiceTypes = listing.Filter(d.ServiceTypes, "", map[string]string{"service": f.Service}, serviceListing)
	out.ClientTypes = listing.Filter(d.ClientTypes, "", map[string]string{"client_type": f.ClientType}, clientTypeListing)

	return View{Filter: f, Dataset: out, Totals: totals(out)}, nil
}

// Options lists the values each breakdown filter accepts.
func Options(d Dataset) map[string][]string {
	return map[string][]string{
		"city":        listing.Options(d.Cities, func(c CityStat) string { return c.City }),
		"service":     listing.Options(d.ServiceTypes, func(s ServiceType) string { return s.Name }),
		"client_type": listing.Options(d.ClientTypes, func(c ClientType) string { return c.Type }),
	}
}

func totals(d Dataset) Totals {
	var t Totals
	for _, p := range d.Revenue {
		t.Revenue += p.Revenue
		t.Expenses += p.Expenses
	}
	t.Profit = t.Revenue - t.Expenses
	for _, p := range d.Leads {
		t.Leads += p.Leads
		t.Converted += p.Converted
	}
	if t.Leads > 0 {
		t.ConversionRate = float64(t.Converted) / float64(t.Leads)
	}
	return t
}

// ReportTitle and ReportHeaders fix the layout of the exported report.
const ReportTitle = "Отчёт по дашборду"

var ReportHeaders = []string{"Метрика", "Значение", "Изменение"}

// Report assembles the export payload from the visible summary statistics and
// returns it with the base filename, without extension.
func Report(d Dataset, now time.Time) (export.Table, string) {
	rows := make([][]string, 0, len(d.Stats))
	for _, s := range d.Stats {
		rows = append(rows, []string{s.Title, s.Value, s.Change})
	}
	t := export.Table{
		Title:   ReportTitle,
		Headers: append([]string(nil), ReportHeaders...),
		Rows:    rows,
	}
	return t, "dashboard-report-" + now.Format(dateLayout)
}
