package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"nixscan/internal/driver"
	"nixscan/internal/ui"
)

type scanOutcome struct {
	result *driver.ScanResult
	err    error
}

// runScanWithUI runs driver.Scan while a progress view renders on stderr.
// Quitting the view cancels the scan.
func runScanWithUI(ctx context.Context, title string, paths []string, opts driver.ScanOptions) (*driver.ScanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Scan(ctx, paths, opts)
		outcomeCh <- scanOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, len(paths), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// модель выходит сама только после close(events), значит результат уже готов
	var outcome scanOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		go func() {
			for range events {
			}
		}()
		outcome = <-outcomeCh
	}
	if outcome.err != nil {
		return outcome.result, outcome.err
	}
	if uiErr != nil && ctx.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, nil
}

func runScan(ctx context.Context, title string, paths []string, opts driver.ScanOptions, useTUI bool) (*driver.ScanResult, error) {
	if useTUI && len(paths) > 1 {
		return runScanWithUI(ctx, title, paths, opts)
	}
	return driver.Scan(ctx, paths, opts)
}
