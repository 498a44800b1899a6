// Package service defines the backend-agnostic interface for kanban operations.
package service

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// MemberRole is a user's role on a board.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// User is an account on the kanban server.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
}

// UserUpdate changes the current user. Nil fields are left untouched.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Board groups columns and tasks.
type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   Time   `json:"created_at"`
	UpdatedAt   Time   `json:"updated_at"`
}

// BoardCreate is the payload for a new board.
type BoardCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
}

// BoardUpdate changes a board. Nil fields are left untouched.
type BoardUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// BoardMember links a user to a shared board.
type BoardMember struct {
	ID       string     `json:"id"`
	BoardID  string     `json:"board_id"`
	UserID   string     `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt Time       `json:"joined_at"`
}

// BoardMemberCreate adds a user to a board.
type BoardMemberCreate struct {
	UserID string     `json:"user_id"`
	Role   MemberRole `json:"role,omitempty"`
}

// Column is an ordered lane on a board.
type Column struct {
	ID        string `json:"id"`
	BoardID   string `json:"board_id"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Color     string `json:"color,omitempty"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`
}

// ColumnCreate is the payload for a new column.
type ColumnCreate struct {
	BoardID  string `json:"board_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

// ColumnUpdate changes a column. Nil fields are left untouched.
type ColumnUpdate struct {
	Name     *string `json:"name,omitempty"`
	Position *int    `json:"position,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// Task is a card in a column.
type Task struct {
	ID           string     `json:"id"`
	BoardID      string     `json:"board_id"`
	ColumnID     string     `json:"column_id"`
	CreatorID    string     `json:"creator_id"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority"`
	Status       TaskStatus `json:"status"`
	Position     int        `json:"position"`
	Tags         []string   `json:"tags,omitempty"`
	DueDate      *Time      `json:"due_date,omitempty"`
	CompletedAt  *Time      `json:"completed_at,omitempty"`
	CreatedAt    Time       `json:"created_at"`
	UpdatedAt    Time       `json:"updated_at"`
}

// TaskCreate is the payload for a new task.
type TaskCreate struct {
	BoardID      string     `json:"board_id"`
	ColumnID     string     `json:"column_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority,omitempty"`
	Status       TaskStatus `json:"status,omitempty"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
	Position     int        `json:"position"`
	Tags         []string   `json:"tags,omitempty"`
	DueDate      *Time      `json:"due_date,omitempty"`
}

// TaskUpdate changes a task. Nil fields are left untouched.
type TaskUpdate struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	ColumnID     *string     `json:"column_id,omitempty"`
	AssignedToID *string     `json:"assigned_to_id,omitempty"`
	Position     *int        `json:"position,omitempty"`
	Priority     *Priority   `json:"priority,omitempty"`
	Status       *TaskStatus `json:"status,omitempty"`
	DueDate      *Time       `json:"due_date,omitempty"`
	CompletedAt  *Time       `json:"completed_at,omitempty"`
	Tags         *[]string   `json:"tags,omitempty"`
}

// Comment is a note on a task.
type Comment struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`
}

// CommentCreate is the payload for a new comment.
type CommentCreate struct {
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
}

// CommentUpdate changes a comment.
type CommentUpdate struct {
	Content *string `json:"content,omitempty"`
}

// Attachment is file metadata attached to a task.
type Attachment struct {
	ID         string `json:"id"`
	TaskID     string `json:"task_id"`
	Filename   string `json:"filename"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	UploadedBy string `json:"uploaded_by"`
	CreatedAt  Time   `json:"created_at"`
}

// ParsePriority validates a priority name.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

// ParseStatus validates a status name.
func ParseStatus(s string) (TaskStatus, bool) {
	switch st := TaskStatus(s); st {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return st, true
	}
	return "", false
}
