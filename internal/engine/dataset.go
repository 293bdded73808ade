package engine

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// DashboardFile is the base name of the dashboard dataset on disk.
const DashboardFile = "dashboard"

//go:embed seed/*.yaml
var seedFS embed.FS

// Dataset is everything the catalog serves besides settings.
type Dataset struct {
	Clients    []schema.Client
	Employees  []schema.Employee
	Partners   []schema.Partner
	Projects   []schema.Project
	Tasks      []schema.Task
	Promotions []schema.Promotion
	Dashboard  dashboard.Dataset
}

// part binds one file base name to the Dataset field it fills.
type part struct {
	name   string
	decode func(data []byte, unmarshal func([]byte, any) error) error
}

func bind[T any](name string, dst *T) part {
	return part{name: name, decode: func(data []byte, unmarshal func([]byte, any) error) error {
		var v T
		if err := unmarshal(data, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}}
}

func (d *Dataset) parts() []part {
	return []part{
		bind(schema.ClientsCollection, &d.Clients),
		bind(schema.EmployeesCollection, &d.Employees),
		bind(schema.PartnersCollection, &d.Partners),
		bind(schema.ProjectsCollection, &d.Projects),
		bind(schema.TasksCollection, &d.Tasks),
		bind(schema.PromotionsCollection, &d.Promotions),
		bind(DashboardFile, &d.Dashboard),
	}
}

// sources wraps each collection in its listing schema, in navigation order.
func (d Dataset) sources() []listing.Source {
	return []listing.Source{
		listing.NewCollection(schema.ClientsCollection, d.Clients, schema.ClientListing),
		listing.NewCollection(schema.EmployeesCollection, d.Employees, schema.EmployeeListing),
		listing.NewCollection(schema.PartnersCollection, d.Partners, schema.PartnerListing),
		listing.NewCollection(schema.ProjectsCollection, d.Projects, schema.ProjectListing),
		listing.NewCollection(schema.TasksCollection, d.Tasks, schema.TaskListing),
		listing.NewCollection(schema.PromotionsCollection, d.Promotions, schema.PromotionListing),
	}
}

// Seed decodes the dataset compiled into the binary.
func Seed() (Dataset, error) {
	var d Dataset
	for _, p := range d.parts() {
		data, err := seedFS.ReadFile("seed/" + p.name + ".yaml")
		if err != nil {
			return Dataset{}, fmt.Errorf("read seed %s: %w", p.name, err)
		}
		if err := p.decode(data, yaml.Unmarshal); err != nil {
			return Dataset{}, fmt.Errorf("decode seed %s: %w", p.name, err)
		}
	}
	return d, nil
}
