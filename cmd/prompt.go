package cmd

import (
	"context"
	"time"

	"github.com/quocvuong92/qcli/internal/constants"
	"github.com/quocvuong92/qcli/internal/logging"
)

// PromptUpdate carries the full text of a new prompt
type PromptUpdate struct {
	Text string
}

// PromptUpdater periodically publishes a prompt showing the local time.
// Only the loop goroutine consumes the updates and applies them.
type PromptUpdater struct {
	appName  string
	layout   string
	interval time.Duration
	now      func() time.Time
	updates  chan PromptUpdate
	log      *logging.FieldLogger
}

// NewPromptUpdater creates an updater rendering "<appName> <time> "
func NewPromptUpdater(appName, layout string, interval time.Duration, logger *logging.Logger) *PromptUpdater {
	return newPromptUpdater(appName, layout, interval, constants.PromptQueueSize, logger)
}

func newPromptUpdater(appName, layout string, interval time.Duration, queueSize int, logger *logging.Logger) *PromptUpdater {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	if layout == "" {
		layout = constants.DefaultTimeLayout
	}
	if interval <= 0 {
		interval = constants.DefaultPromptInterval
	}
	return &PromptUpdater{
		appName:  appName,
		layout:   layout,
		interval: interval,
		now:      time.Now,
		updates:  make(chan PromptUpdate, queueSize),
		log:      logger.WithFields(logging.Fields{"component": "prompt"}),
	}
}

// Updates is the receiving side of the update queue
func (u *PromptUpdater) Updates() <-chan PromptUpdate {
	return u.updates
}

// Render builds the prompt for t
func (u *PromptUpdater) Render(t time.Time) PromptUpdate {
	return PromptUpdate{Text: u.appName + " " + t.Format(u.layout) + " "}
}

// Run publishes one update per interval until ctx is cancelled
func (u *PromptUpdater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.publish(u.Render(u.now()))
		}
	}
}

// publish never blocks. A full queue drops the update.
func (u *PromptUpdater) publish(p PromptUpdate) bool {
	select {
	case u.updates <- p:
		return true
	default:
		u.log.Warn("Prompt update dropped, queue full", logging.Fields{"capacity": cap(u.updates)})
		return false
	}
}

// latestUpdate drains every queued update and returns the newest one
func latestUpdate(updates <-chan PromptUpdate) (PromptUpdate, bool) {
	var last PromptUpdate
	found := false
	for {
		select {
		case p := <-updates:
			last, found = p, true
		default:
			return last, found
		}
	}
}
