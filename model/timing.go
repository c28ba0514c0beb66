package model

import (
	"time"

	"github.com/charmbracelet/log"
)

// TimedTask logs when a named operation starts and how long it took.
//
//	defer model.StartTimedTask(logger, "save").Stop()
type TimedTask struct {
	logger *log.Logger
	name   string
	start  time.Time
}

// StartTimedTask starts the clock. A nil logger uses the charmbracelet
// default logger.
func StartTimedTask(logger *log.Logger, name string) *TimedTask {
	if logger == nil {
		logger = log.Default()
	}
	if name == "" {
		name = "task"
	}
	logger.Info(name + " started")
	return &TimedTask{logger: logger, name: name, start: time.Now()}
}

// Stop logs the elapsed time and returns it.
func (t *TimedTask) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Info(t.name+" completed", "ms", elapsed.Milliseconds())
	return elapsed
}
