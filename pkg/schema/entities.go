// Package schema defines the records served by the admin panel.
// Every record carries an opaque, immutable string ID.
package schema

// Collection names, in navigation order.
const (
	ClientsCollection    = "clients"
	EmployeesCollection  = "employees"
	PartnersCollection   = "partners"
	ProjectsCollection   = "projects"
	TasksCollection      = "tasks"
	PromotionsCollection = "promotions"
)

// Collections lists every collection in navigation order.
var Collections = []string{
	ClientsCollection,
	EmployeesCollection,
	PartnersCollection,
	ProjectsCollection,
	TasksCollection,
	PromotionsCollection,
}

// Titles are the page headings of each collection.
var Titles = map[string]string{
	ClientsCollection:    "Клиенты",
	EmployeesCollection:  "Сотрудники",
	PartnersCollection:   "Партнёры",
	ProjectsCollection:   "Проекты",
	TasksCollection:      "Задачи",
	PromotionsCollection: "Акции",
}

// Client is a customer account.
type Client struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name" binding:"required"`
	Email            string   `json:"email" yaml:"email" binding:"required,email"`
	Phone            string   `json:"phone" yaml:"phone"`
	Company          string   `json:"company" yaml:"company"`
	Position         string   `json:"position" yaml:"position"`
	Address          string   `json:"address" yaml:"address"`
	City             string   `json:"city" yaml:"city"`
	Status           string   `json:"status" yaml:"status" binding:"required,oneof=active inactive lead"`
	RegistrationDate string   `json:"registration_date" yaml:"registration_date"`
	LastActivity     string   `json:"last_activity" yaml:"last_activity"`
	ProjectsCount    int      `json:"projects_count" yaml:"projects_count"`
	TotalSpent       int64    `json:"total_spent" yaml:"total_spent"`
	Tags             []string `json:"tags" yaml:"tags"`
}

// Employee is a member of staff.
type Employee struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name" binding:"required"`
	Email         string   `json:"email" yaml:"email" binding:"required,email"`
	Phone         string   `json:"phone" yaml:"phone"`
	Position      string   `json:"position" yaml:"position" binding:"required"`
	Department    string   `json:"department" yaml:"department" binding:"required"`
	HireDate      string   `json:"hire_date" yaml:"hire_date"`
	Status        string   `json:"status" yaml:"status" binding:"required,oneof=active inactive on-leave"`
	Salary        int64    `json:"salary" yaml:"salary" binding:"min=0"`
	ProjectsCount int      `json:"projects_count" yaml:"projects_count"`
	Skills        []string `json:"skills" yaml:"skills"`
	Avatar        string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Partner is a partner organisation.
type Partner struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name" binding:"required"`
	Company         string   `json:"company" yaml:"company" binding:"required"`
	ContactPerson   string   `json:"contact_person" yaml:"contact_person"`
	Email           string   `json:"email" yaml:"email" binding:"required,email"`
	Phone           string   `json:"phone" yaml:"phone"`
	Website         string   `json:"website" yaml:"website" binding:"omitempty,url"`
	Address         string   `json:"address" yaml:"address"`
	City            string   `json:"city" yaml:"city"`
	PartnershipType string   `json:"partnership_type" yaml:"partnership_type"`
	Status          string   `json:"status" yaml:"status" binding:"required,oneof=active inactive pending"`
	StartDate       string   `json:"start_date" yaml:"start_date"`
	Revenue         int64    `json:"revenue" yaml:"revenue"`
	ProjectsCount   int      `json:"projects_count" yaml:"projects_count"`
	Rating          float64  `json:"rating" yaml:"rating" binding:"min=0,max=5"`
	Tags            []string `json:"tags" yaml:"tags"`
}

// Project is a client engagement.
type Project struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name" binding:"required"`
	Description    string   `json:"description" yaml:"description"`
	Status         string   `json:"status" yaml:"status" binding:"required,oneof=planning in-progress on-hold completed cancelled"`
	Priority       string   `json:"priority" yaml:"priority" binding:"required,oneof=low medium high critical"`
	StartDate      string   `json:"start_date" yaml:"start_date"`
	EndDate        string   `json:"end_date" yaml:"end_date"`
	Progress       int      `json:"progress" yaml:"progress" binding:"min=0,max=100"`
	Manager        string   `json:"manager" yaml:"manager" binding:"required"`
	Team           []string `json:"team" yaml:"team"`
	TasksCount     int      `json:"tasks_count" yaml:"tasks_count"`
	CompletedTasks int      `json:"completed_tasks" yaml:"completed_tasks"`
	Budget         int64    `json:"budget" yaml:"budget"`
	Spent          int64    `json:"spent" yaml:"spent"`
}

// Task is a unit of work, optionally attached to a project.
type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title" binding:"required"`
	Description string   `json:"description" yaml:"description"`
	Status      string   `json:"status" yaml:"status" binding:"required,oneof=backlog todo in-progress review done"`
	Priority    string   `json:"priority" yaml:"priority" binding:"required,oneof=low medium high critical"`
	Assignee    string   `json:"assignee" yaml:"assignee" binding:"required"`
	Creator     string   `json:"creator" yaml:"creator"`
	CreatedAt   string   `json:"created_at" yaml:"created_at"`
	UpdatedAt   string   `json:"updated_at" yaml:"updated_at"`
	DueDate     string   `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Project     string   `json:"project,omitempty" yaml:"project,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	Comments    int      `json:"comments" yaml:"comments"`
	Attachments int      `json:"attachments" yaml:"attachments"`
}

// Promotion is a discount campaign. A nil MaxUsage means unlimited.
type Promotion struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name" binding:"required"`
	Description   string   `json:"description" yaml:"description"`
	StartDate     string   `json:"start_date" yaml:"start_date" binding:"required"`
	EndDate       string   `json:"end_date" yaml:"end_date" binding:"required"`
	Platforms     []string `json:"platforms" yaml:"platforms"`
	Clients       []string `json:"clients" yaml:"clients"`
	Products      []string `json:"products" yaml:"products"`
	UsageCount    int      `json:"usage_count" yaml:"usage_count"`
	MaxUsage      *int     `json:"max_usage" yaml:"max_usage"`
	DiscountType  string   `json:"discount_type" yaml:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue float64  `json:"discount_value" yaml:"discount_value" binding:"gt=0"`
	IsActive      bool     `json:"is_active" yaml:"is_active"`
}

// Status maps the active flag onto the filterable status values.
func (p Promotion) Status() string {
	if p.IsActive {
		return "active"
	}
	return "inactive"
}
