package models

// GoalStatus is the server-assigned progress state of a goal.
type GoalStatus string

const (
	GoalOnTrack   GoalStatus = "on_track"
	GoalBehind    GoalStatus = "behind"
	GoalCompleted GoalStatus = "completed"
	GoalOverdue   GoalStatus = "overdue"
)

// Goal is a savings target. The derived fields are computed by the backend
// and may be absent.
type Goal struct {
	ID                   int        `json:"id"`
	UserID               int        `json:"user_id,omitempty"`
	Name                 string     `json:"name"`
	Description          *string    `json:"description,omitempty"`
	TargetAmount         float64    `json:"target_amount"`
	CurrentAmount        float64    `json:"current_amount"`
	RemainingAmount      *float64   `json:"remaining_amount,omitempty"`
	ProgressPercentage   *float64   `json:"progress_percentage,omitempty"`
	TargetDate           Date       `json:"target_date"`
	DaysRemaining        *int       `json:"days_remaining,omitempty"`
	IsCompleted          bool       `json:"is_completed"`
	Status               GoalStatus `json:"status,omitempty"`
	MonthlySavingsNeeded *float64   `json:"monthly_savings_needed,omitempty"`
}

// GoalInput is the body of a create call.
type GoalInput struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Description   string  `json:"description,omitempty"`
	TargetAmount  float64 `json:"target_amount" validate:"gt=0"`
	CurrentAmount float64 `json:"current_amount" validate:"gte=0,ltefield=TargetAmount"`
	TargetDate    Date    `json:"target_date" validate:"required"`
}

// GoalUpdate is the body of an update call. Nil fields are left unchanged.
type GoalUpdate struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty"`
	TargetAmount  *float64 `json:"target_amount,omitempty" validate:"omitempty,gt=0"`
	CurrentAmount *float64 `json:"current_amount,omitempty" validate:"omitempty,gte=0"`
	TargetDate    *Date    `json:"target_date,omitempty"`
	IsCompleted   *bool    `json:"is_completed,omitempty"`
}

// Contribution is the body of a goal contribution. The backend adds Amount to
// the goal's current amount.
type Contribution struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}
