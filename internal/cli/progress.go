package cli

import (
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

type stopFunc func()

// stageProgress shows one spinner at a time, swapping the description as the
// pipeline moves between stages.
type stageProgress struct {
	enabled bool
	stop    stopFunc
}

func newStageProgress(enabled bool) *stageProgress {
	return &stageProgress{enabled: enabled}
}

// enter finishes the previous stage's spinner and starts one for the next.
func (p *stageProgress) enter(description string) {
	p.done()
	p.stop = startSpinner(p.enabled, description)
}

func (p *stageProgress) done() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

func startSpinner(enabled bool, description string) stopFunc {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
		})
	}
}
