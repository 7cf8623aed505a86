package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/helios/internal/daytimes"
)

// ProgramSink forwards controller output to a running Bubble Tea program.
type ProgramSink struct {
	program *tea.Program
}

// NewProgramSink returns a sink that sends to p.
func NewProgramSink(p *tea.Program) *ProgramSink {
	return &ProgramSink{program: p}
}

// ShowStatus implements controller.Sink.
func (s *ProgramSink) ShowStatus(text string) {
	s.program.Send(StatusMsg(text))
}

// ShowDay implements controller.Sink.
func (s *ProgramSink) ShowDay(r daytimes.DayRecord) {
	s.program.Send(DayMsg(r))
}

// PlainSink writes timestamped lines, for pipes and dumb terminals.
type PlainSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewPlainSink returns a sink writing to w.
func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: w, now: time.Now}
}

// ShowStatus implements controller.Sink.
func (s *PlainSink) ShowStatus(text string) {
	s.printf("status: %s", text)
}

// ShowDay implements controller.Sink.
func (s *PlainSink) ShowDay(r daytimes.DayRecord) {
	s.printf("%s", FormatDay(r))
}

func (s *PlainSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s "+format+"\n", append([]any{s.now().Format("15:04:05")}, args...)...)
}
