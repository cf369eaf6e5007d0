// Package runlog maintains the append-only text artifact a migration run
// leaves behind: progress lines, per-record errors, and the final
// verification report, each timestamped. Entries are mirrored to the
// structured logger.
package runlog

import (
	"fmt"
	"os"
	"time"

	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type Log struct {
	f   *os.File
	log *logger.Logger

	rowErrors   int
	stageErrors int
}

func Open(path string, logg *logger.Logger) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	return &Log{f: f, log: logg.With("component", "runlog")}, nil
}

func (l *Log) line(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.f, "%s %s\n", time.Now().Format(time.RFC3339), msg)
}

func (l *Log) Infof(format string, args ...interface{}) {
	l.line(format, args...)
	l.log.Info(fmt.Sprintf(format, args...))
}

// Progress records how far a stage has come; emitted once per page.
func (l *Log) Progress(stage string, processed int) {
	l.line("progress stage=%s processed=%d", stage, processed)
	l.log.Info("progress", "stage", stage, "processed", processed)
}

// RecordError logs a row-level failure: the offending source key plus the
// error, then the run moves on.
func (l *Log) RecordError(stage, sourceKey string, err error) {
	l.rowErrors++
	l.line("error stage=%s key=%s err=%q", stage, sourceKey, err)
	l.log.Warn("record failed", "stage", stage, "key", sourceKey, "error", err)
}

// StageError logs a stage-level failure; the stage is abandoned and the
// run continues with the next one.
func (l *Log) StageError(stage string, err error) {
	l.stageErrors++
	l.line("stage-error stage=%s err=%q", stage, err)
	l.log.Error("stage failed", "stage", stage, "error", err)
}

// Report appends the final verification report verbatim.
func (l *Log) Report(text string) {
	l.line("verification report:")
	fmt.Fprintln(l.f, text)
}

func (l *Log) RowErrors() int   { return l.rowErrors }
func (l *Log) StageErrors() int { return l.stageErrors }

func (l *Log) Close() error {
	return l.f.Close()
}
