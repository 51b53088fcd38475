// Package logging provides per-subsystem loggers behind a minimal
// interface. Components receive a Logger at construction time and never
// reach for a process-global one, which keeps them testable with a fake.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type Logger interface {
	Logf(format string, v ...any)
}

type subsystemLogger struct {
	name    string
	service *Service
}

func (s *subsystemLogger) Logf(format string, v ...any) {
	s.service.logf(s.name, format, v...)
}

type logEntry struct {
	name      string
	formatted string
}

// Service owns the writers for every registered subsystem. Writes are
// funneled through one goroutine so interleaved Logf calls from the
// connection pumps and HTTP handlers never tear a line.
type Service struct {
	dir string

	lock    sync.RWMutex
	writers map[string]*log.Logger
	files   map[string]*os.File
	enabled bool

	inbox chan logEntry
}

// NewService creates a logging service. When dir is empty all subsystems
// log to stderr; otherwise each subsystem gets its own file under dir.
func NewService(dir string, enabled bool) (*Service, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Service{
		dir:     dir,
		writers: make(map[string]*log.Logger),
		files:   make(map[string]*os.File),
		enabled: enabled,
		inbox:   make(chan logEntry, 512),
	}, nil
}

func (s *Service) RegisterSubsystem(name string) (Logger, error) {
	var out io.Writer = os.Stderr
	if s.dir != "" {
		file, err := os.OpenFile(filepath.Join(s.dir, name+".log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o666)
		if err != nil {
			return nil, err
		}
		s.lock.Lock()
		s.files[name] = file
		s.lock.Unlock()
		out = file
	}

	s.lock.Lock()
	s.writers[name] = log.New(out, fmt.Sprintf("[%s] ", name), log.Ldate|log.Ltime)
	s.lock.Unlock()
	return &subsystemLogger{name, s}, nil
}

func (s *Service) SetEnabled(enabled bool) {
	s.lock.Lock()
	s.enabled = enabled
	s.lock.Unlock()
}

func (s *Service) logf(name, format string, v ...any) {
	entry := logEntry{name, fmt.Sprintf(format, v...)}
	select {
	case s.inbox <- entry:
	default:
		// Inbox full; dropping a log line beats stalling a pump.
	}
}

func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-s.inbox:
			s.write(entry.name, entry.formatted)
		}
	}
}

func (s *Service) write(name, formatted string) {
	s.lock.RLock()
	writer, ok := s.writers[name]
	enabled := s.enabled
	s.lock.RUnlock()

	if ok && enabled {
		writer.Print(formatted)
	}
}

func (s *Service) CloseAll() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, file := range s.files {
		file.Sync()
		file.Close()
	}
	clear(s.files)
	clear(s.writers)
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}
