package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/tasks"
)

// TasksController triggers maintenance and reports task progress.
type TasksController struct {
	maintenance MaintenanceRunner
	status      TaskStatusReader
}

// NewTasksController creates a new TasksController. Either dependency may
// be nil when background tasks are disabled.
func NewTasksController(maintenance MaintenanceRunner, status TaskStatusReader) *TasksController {
	return &TasksController{maintenance: maintenance, status: status}
}

// MaintenanceStatus describes the maintenance schedule.
type MaintenanceStatus struct {
	Scheduled bool       `json:"scheduled"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// GetMaintenance handles GET /api/maintenance
func (tc *TasksController) GetMaintenance(c *gin.Context) {
	c.JSON(http.StatusOK, MaintenanceStatus{
		Scheduled: tc.maintenance.IsRunning(),
		NextRun:   tc.maintenance.NextRun(),
	})
}

// RunMaintenance handles POST /api/maintenance/run
// Enqueues audit cleanup and missing-media pruning immediately.
func (tc *TasksController) RunMaintenance(c *gin.Context) {
	ids, err := tc.maintenance.RunNow()
	if err != nil {
		respondInternalError(c, err, "enqueue maintenance")
		return
	}
	respondAccepted(c, "maintenance enqueued", gin.H{"task_ids": ids})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}
