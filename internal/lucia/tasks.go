package lucia

import (
	"context"
	"time"
)

// Task is one entry of the backend's background task queue.
type Task struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Task queue states.
const (
	TaskQueued    = "queued"
	TaskRunning   = "running"
	TaskDone      = "done"
	TaskFailed    = "failed"
	TaskCancelled = "cancelled"
)

// ListTasks fetches one page of tasks, optionally filtered by status.
func (c *Client) ListTasks(ctx context.Context, status string, page, pageSize int) (*Paged[Task], error) {
	q := pageQuery(page, pageSize)
	if status != "" {
		q.Set("status", status)
	}
	return getPaged[Task](ctx, c, "/tasks", q)
}

// CancelTask asks the backend to cancel a queued or running task.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	return c.post(ctx, "/tasks/"+id+"/cancel", nil, nil)
}
