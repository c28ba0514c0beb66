package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrEmptyFile is returned when a save has no path or no content.
var ErrEmptyFile = errors.New("model: file path and content are required")

// SimpleFile is a path/content pair to persist.
type SimpleFile struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// ISimpleFileService saves files to the local filesystem.
type ISimpleFileService interface {
	// Save starts writing content to path in the background and returns
	// immediately. Missing parent directories are created.
	Save(path, content string)
	// Wait blocks until every pending save finished and returns their
	// joined errors.
	Wait() error
}

// FileConfig tunes SimpleFileService. The composition root registers it as
// an instance.
type FileConfig struct {
	// Delay simulates slow storage before each write.
	Delay time.Duration
}

// SimpleFileService writes files asynchronously with timing logs.
type SimpleFileService struct {
	logger *log.Logger
	delay  time.Duration

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

func NewSimpleFileService(logger *log.Logger, cfg FileConfig) *SimpleFileService {
	return &SimpleFileService{logger: logger.WithPrefix("files"), delay: cfg.Delay}
}

func (s *SimpleFileService) Save(path, content string) {
	s.logger.Info("save triggered", "path", path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := StartTimedTask(s.logger, "save "+path)
		defer timer.Stop()

		if err := s.save(path, content); err != nil {
			s.logger.Error("background save failed", "path", path, "err", err)
			s.mu.Lock()
			s.errs = append(s.errs, err)
			s.mu.Unlock()
			return
		}
		s.logger.Info("task completed", "path", path)
	}()
}

func (s *SimpleFileService) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.errs...)
	s.errs = nil
	return err
}

func (s *SimpleFileService) save(path, content string) error {
	if s.delay > 0 {
		s.logger.Debug("sleeping", "delay", s.delay)
		time.Sleep(s.delay)
	}
	if path == "" || content == "" {
		return fmt.Errorf("save %q: %w", path, ErrEmptyFile)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("file does not exist, creating", "path", path)
	} else {
		s.logger.Info("file found, updating", "path", path)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("file saved", "path", path)
	return nil
}
