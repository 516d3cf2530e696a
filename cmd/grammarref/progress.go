package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"grammarref/internal/driver"
	"grammarref/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs driver.Check on a goroutine and feeds its phase events
// into the progress view.
func runCheckWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		o := opts
		o.Observer = func(ev driver.PhaseEvent) {
			if ev.Status != driver.PhaseProgress {
				events <- ev
				return
			}
			select {
			case events <- ev:
			default:
				// промежуточный прогресс можно потерять, границы фаз нельзя
			}
		}
		res, err := driver.Check(ctx, paths, o)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// view may quit before the check finishes; keep the sender unblocked
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		log.Warningf("progress view: %v", uiErr)
	}
	return outcome.result, outcome.err
}
