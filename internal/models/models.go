package models

import "time"

// User roles and task statuses are plain strings in the store; the
// accepted values are enforced at the request boundary.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusTodo  = "Todo"
	StatusDoing = "Doing"
	StatusDone  = "Done"
)

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TaskOwner is the slice of a user record that the admin dashboard join
// exposes. The password hash has no business here, nor do timestamps.
type TaskOwner struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Task is serialized in the camelCase shape the web client expects.
// Category and User are join results; they are only populated on reads
// and the field names match the client's nested-object accessors.
type Task struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  *int       `json:"categoryId"`
	DueDate     string     `json:"dueDate"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Category    *Category  `json:"Category,omitempty"`
	User        *TaskOwner `json:"User,omitempty"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	default:
		return false
	}
}
