package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-computes dashboard summaries into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload scopes one warmup run.
type DashboardWarmupPayload struct {
	Scope string `json:"scope"`
}

// NewDashboardWarmupTask constructs an Asynq task with a unique id so
// repeated schedules do not collapse into one another.
func NewDashboardWarmupTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.TaskID(uuid.NewString())), nil
}
