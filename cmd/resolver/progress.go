package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progress: тонкая обёртка над progressbar; nil-бар ничего не делает.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(total int, description string, enabled bool) *progress {
	if !enabled || total == 0 {
		return &progress{}
	}
	return &progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)}
}

// Add is safe for concurrent use.
func (p *progress) Add() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
