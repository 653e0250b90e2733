// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ExpiredAssignmentReaper is a minimal interface extracted from AssignmentFlow.
// This keeps the sweeper independent and easy to test
type ExpiredAssignmentReaper interface {
	SweepExpiredAssignments(ctx context.Context) (int64, error)
}

// AssignmentSweeper periodically releases assignments that outlived the
// configured TTL so their candidates return to the unassigned pool.
type AssignmentSweeper struct {
	reaper   ExpiredAssignmentReaper
	logger   *log.Logger
	interval time.Duration

	logFile *os.File
}

func NewAssignmentSweeper(reaper ExpiredAssignmentReaper, interval time.Duration) *AssignmentSweeper {
	if interval <= 0 {
		interval = time.Hour
	}

	s := &AssignmentSweeper{
		reaper:   reaper,
		interval: interval,
	}

	// Initialize sweeper-specific logger (to stdout and persistent file)
	if err := s.initSweeperLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("sweeper: failed to initialize file logger: %v", err)
	}

	return s
}

// initSweeperLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (s *AssignmentSweeper) initSweeperLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath := filepath.Join(dir, "sweeper.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		s.logger = log.New(mw, "sweeper ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create sweeper log file in any candidate directory")
}

// Start launches the sweep loop in a background goroutine and returns a stop function
func (s *AssignmentSweeper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				s.closeLogFile()
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *AssignmentSweeper) runOnce(ctx context.Context) {
	swept, err := s.reaper.SweepExpiredAssignments(ctx)
	if err != nil {
		s.logger.Printf("sweeper: sweep failed: %v", err)
		return
	}
	if swept > 0 {
		s.logger.Printf("sweeper: released %d expired assignments", swept)
	}
}

func (s *AssignmentSweeper) closeLogFile() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}
