package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celerix-dev/celerix-admin/pkg/listing"
)

// Priorities shared by projects and tasks, lowest first.
var Priorities = []string{"low", "medium", "high", "critical"}

// TaskStatuses are the task board columns in display order.
var TaskStatuses = []string{"backlog", "todo", "in-progress", "review", "done"}

var priorityText = map[string]string{
	"low":      "Низкий",
	"medium":   "Средний",
	"high":     "Высокий",
	"critical": "Критический",
}

var clientStatusText = map[string]string{
	"active":   "Активный",
	"inactive": "Неактивный",
	"lead":     "Потенциальный",
}

var employeeStatusText = map[string]string{
	"active":   "Активный",
	"inactive": "Уволен",
	"on-leave": "В отпуске",
}

var partnerStatusText = map[string]string{
	"active":   "Активный",
	"inactive": "Неактивный",
	"pending":  "На рассмотрении",
}

var projectStatusText = map[string]string{
	"planning":    "Планирование",
	"in-progress": "В работе",
	"on-hold":     "На паузе",
	"completed":   "Завершён",
	"cancelled":   "Отменён",
}

var taskStatusText = map[string]string{
	"backlog":     "Бэклог",
	"todo":        "К выполнению",
	"in-progress": "В работе",
	"review":      "На проверке",
	"done":        "Готово",
}

// label returns the display text for v, or v itself when unknown.
func label(texts map[string]string, v string) string {
	if t, ok := texts[v]; ok {
		return t
	}
	return v
}

// Rub formats an amount of roubles with thousands separators.
func Rub(n int64) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "₽" + b.String()
}

// TaskStatusLabel is the board column heading for a task status.
func TaskStatusLabel(status string) string { return label(taskStatusText, status) }

// PriorityLabel is the display text of a project or task priority.
func PriorityLabel(priority string) string { return label(priorityText, priority) }

func join(vs []string) string { return strings.Join(vs, ", ") }

// ClientListing searches name, email and company and filters by status.
var ClientListing = listing.Schema[Client]{
	ID: func(c Client) string { return c.ID },
	Search: []listing.Field[Client]{
		func(c Client) string { return c.Name },
		func(c Client) string { return c.Email },
		func(c Client) string { return c.Company },
	},
	Categories: []listing.Category[Client]{
		{Name: "status", Value: func(c Client) string { return c.Status }, Values: []string{"active", "inactive", "lead"}},
	},
	Columns: []listing.Column[Client]{
		{Header: "Клиент", Value: func(c Client) string { return c.Name }},
		{Header: "Email", Value: func(c Client) string { return c.Email }},
		{Header: "Компания", Value: func(c Client) string { return c.Company }},
		{Header: "Город", Value: func(c Client) string { return c.City }},
		{Header: "Статус", Value: func(c Client) string { return label(clientStatusText, c.Status) }},
		{Header: "Проекты", Value: func(c Client) string { return strconv.Itoa(c.ProjectsCount) }},
		{Header: "Сумма", Value: func(c Client) string { return Rub(c.TotalSpent) }},
		{Header: "Последняя активность", Value: func(c Client) string { return c.LastActivity }},
		{Header: "Теги", Value: func(c Client) string { return join(c.Tags) }},
	},
}

// EmployeeListing searches name, email and position and filters by status and
// department. Departments are derived from the records.
var EmployeeListing = listing.Schema[Employee]{
	ID: func(e Employee) string { return e.ID },
	Search: []listing.Field[Employee]{
		func(e Employee) string { return e.Name },
		func(e Employee) string { return e.Email },
		func(e Employee) string { return e.Position },
	},
	Categories: []listing.Category[Employee]{
		{Name: "status", Value: func(e Employee) string { return e.Status }, Values: []string{"active", "inactive", "on-leave"}},
		{Name: "department", Value: func(e Employee) string { return e.Department }},
	},
	Columns: []listing.Column[Employee]{
		{Header: "Сотрудник", Value: func(e Employee) string { return e.Name }},
		{Header: "Email", Value: func(e Employee) string { return e.Email }},
		{Header: "Должность", Value: func(e Employee) string { return e.Position }},
		{Header: "Отдел", Value: func(e Employee) string { return e.Department }},
		{Header: "Статус", Value: func(e Employee) string { return label(employeeStatusText, e.Status) }},
		{Header: "Дата найма", Value: func(e Employee) string { return e.HireDate }},
		{Header: "Зарплата", Value: func(e Employee) string { return Rub(e.Salary) }},
		{Header: "Навыки", Value: func(e Employee) string { return join(e.Skills) }},
	},
}

// PartnerListing searches name, company and email and filters by status.
var PartnerListing = listing.Schema[Partner]{
	ID: func(p Partner) string { return p.ID },
	Search: []listing.Field[Partner]{
		func(p Partner) string { return p.Name },
		func(p Partner) string { return p.Company },
		func(p Partner) string { return p.Email },
	},
	Categories: []listing.Category[Partner]{
		{Name: "status", Value: func(p Partner) string { return p.Status }, Values: []string{"active", "inactive", "pending"}},
	},
	Columns: []listing.Column[Partner]{
		{Header: "Партнёр", Value: func(p Partner) string { return p.Name }},
		{Header: "Компания", Value: func(p Partner) string { return p.Company }},
		{Header: "Email", Value: func(p Partner) string { return p.Email }},
		{Header: "Тип", Value: func(p Partner) string { return p.PartnershipType }},
		{Header: "Город", Value: func(p Partner) string { return p.City }},
		{Header: "Статус", Value: func(p Partner) string { return label(partnerStatusText, p.Status) }},
		{Header: "Выручка", Value: func(p Partner) string { return Rub(p.Revenue) }},
		{Header: "Рейтинг", Value: func(p Partner) string { return strconv.FormatFloat(p.Rating, 'f', 1, 64) }},
	},
}

// ProjectListing searches name, description and manager and filters by status
// and priority.
var ProjectListing = listing.Schema[Project]{
	ID: func(p Project) string { return p.ID },
	Search: []listing.Field[Project]{
		func(p Project) string { return p.Name },
		func(p Project) string { return p.Description },
		func(p Project) string { return p.Manager },
	},
	Categories: []listing.Category[Project]{
		{Name: "status", Value: func(p Project) string { return p.Status }, Values: []string{"planning", "in-progress", "on-hold", "completed", "cancelled"}},
		{Name: "priority", Value: func(p Project) string { return p.Priority }, Values: Priorities},
	},
	Columns: []listing.Column[Project]{
		{Header: "Проект", Value: func(p Project) string { return p.Name }},
		{Header: "Менеджер", Value: func(p Project) string { return p.Manager }},
		{Header: "Статус", Value: func(p Project) string { return label(projectStatusText, p.Status) }},
		{Header: "Приоритет", Value: func(p Project) string { return label(priorityText, p.Priority) }},
		{Header: "Прогресс", Value: func(p Project) string { return fmt.Sprintf("%d%%", p.Progress) }},
		{Header: "Задачи", Value: func(p Project) string { return fmt.Sprintf("%d/%d", p.CompletedTasks, p.TasksCount) }},
		{Header: "Бюджет", Value: func(p Project) string { return Rub(p.Budget) }},
		{Header: "Сроки", Value: func(p Project) string { return p.StartDate + " — " + p.EndDate }},
	},
}

// TaskListing searches title, description and project and filters by status,
// priority and assignee. A task without a project only matches on its other
// fields.
var TaskListing = listing.Schema[Task]{
	ID: func(t Task) string { return t.ID },
	Search: []listing.Field[Task]{
		func(t Task) string { return t.Title },
		func(t Task) string { return t.Description },
		func(t Task) string { return t.Project },
	},
	Categories: []listing.Category[Task]{
		{Name: "status", Value: func(t Task) string { return t.Status }, Values: TaskStatuses},
		{Name: "priority", Value: func(t Task) string { return t.Priority }, Values: Priorities},
		{Name: "assignee", Value: func(t Task) string { return t.Assignee }},
	},
	Columns: []listing.Column[Task]{
		{Header: "Задача", Value: func(t Task) string { return t.Title }},
		{Header: "Проект", Value: func(t Task) string { return t.Project }},
		{Header: "Исполнитель", Value: func(t Task) string { return t.Assignee }},
		{Header: "Статус", Value: func(t Task) string { return label(taskStatusText, t.Status) }},
		{Header: "Приоритет", Value: func(t Task) string { return label(priorityText, t.Priority) }},
		{Header: "Срок", Value: func(t Task) string { return t.DueDate }},
		{Header: "Теги", Value: func(t Task) string { return join(t.Tags) }},
	},
}

// PromotionListing searches name and description. Status and discount type
// are filterable.
var PromotionListing = listing.Schema[Promotion]{
	ID: func(p Promotion) string { return p.ID },
	Search: []listing.Field[Promotion]{
		func(p Promotion) string { return p.Name },
		func(p Promotion) string { return p.Description },
	},
	Categories: []listing.Category[Promotion]{
		{Name: "status", Value: Promotion.Status, Values: []string{"active", "inactive"}},
		{Name: "discount_type", Value: func(p Promotion) string { return p.DiscountType }, Values: []string{"percentage", "fixed"}},
	},
	Columns: []listing.Column[Promotion]{
		{Header: "Акция", Value: func(p Promotion) string { return p.Name }},
		{Header: "Период", Value: func(p Promotion) string { return p.StartDate + " — " + p.EndDate }},
		{Header: "Скидка", Value: Promotion.Discount},
		{Header: "Использований", Value: Promotion.Usage},
		{Header: "Площадки", Value: func(p Promotion) string { return join(p.Platforms) }},
		{Header: "Статус", Value: func(p Promotion) string {
			if p.IsActive {
				return "Активна"
			}
			return "Неактивна"
		}},
	},
}

// Discount renders the discount as a percentage or a fixed amount.
func (p Promotion) Discount() string {
	if p.DiscountType == "fixed" {
		return Rub(int64(p.DiscountValue))
	}
	return strconv.FormatFloat(p.DiscountValue, 'f', -1, 64) + "%"
}

// Usage renders usage against the cap, "∞" when uncapped.
func (p Promotion) Usage() string {
	if p.MaxUsage == nil {
		return fmt.Sprintf("%d / ∞", p.UsageCount)
	}
	return fmt.Sprintf("%d / %d", p.UsageCount, *p.MaxUsage)
}
