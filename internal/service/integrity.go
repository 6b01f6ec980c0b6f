package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
)

// Report describes what one integrity sweep repaired.
type Report struct {
	MissingTimestamps int
	TrimmedNames      int
	ResetThresholds   bool
	Saved             bool
	BackupPath        string
}

// Changed reports whether the sweep modified the document.
func (r Report) Changed() bool {
	return r.MissingTimestamps > 0 || r.TrimmedNames > 0 || r.ResetThresholds
}

// Integrity repairs drift in the document and writes optional snapshots.
type Integrity struct {
	repo      model.Repository
	backupDir string
	now       func() time.Time
	logger    *logger.Logger
}

func NewIntegrity(repo model.Repository, backupDir string, logger *logger.Logger) *Integrity {
	return &Integrity{
		repo:      repo,
		backupDir: backupDir,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Integrity) Sweep(ctx context.Context) (Report, error) {
	doc := s.repo.Data()
	report := s.repair(doc)

	if report.Changed() {
		if err := s.repo.Save(ctx, doc); err != nil {
			s.logger.Error("Integrity service: failed to save repaired document",
				"error", err.Error())
			return report, fmt.Errorf("failed to save repaired document: %w", err)
		}
		report.Saved = true
		s.logger.Info("Integrity service: document repaired",
			"timestamps", report.MissingTimestamps,
			"names", report.TrimmedNames,
			"thresholds", report.ResetThresholds)
	}

	if s.backupDir != "" && doc.Settings.Bool(model.SettingAutoBackup, false) {
		path, err := s.backup(doc)
		if err != nil {
			s.logger.Error("Integrity service: failed to write backup",
				"dir", s.backupDir,
				"error", err.Error())
			return report, err
		}
		report.BackupPath = path
	}

	return report, nil
}

func (s *Integrity) repair(doc *model.Document) Report {
	var report Report
	now := model.NewTimestamp(s.now())

	for name, class := range doc.Classes {
		if class.Created.IsZero() {
			class.Created = now
			report.MissingTimestamps++
		}
		for id, student := range class.Students {
			if student.Created.IsZero() {
				student.Created = now
				report.MissingTimestamps++
			}
			if trimmed := strings.TrimSpace(student.Name); trimmed != student.Name && trimmed != "" {
				student.Name = trimmed
				report.TrimmedNames++
			}
			class.Students[id] = student
		}
		doc.Classes[name] = class
	}

	if _, ok := doc.Settings[model.SettingAchievements]; ok {
		current := doc.Settings.Achievements()
		if current == model.DefaultAchievements && !storedAchievementsEqual(doc.Settings, current) {
			doc.Settings.SetAchievements(model.DefaultAchievements)
			report.ResetThresholds = true
		}
	}

	return report
}

// storedAchievementsEqual reports whether the raw achievements setting
// decodes to exactly a.
func storedAchievementsEqual(settings model.Settings, a model.Achievements) bool {
	raw, err := json.Marshal(settings[model.SettingAchievements])
	if err != nil {
		return false
	}
	var stored model.Achievements
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false
	}
	return stored == a
}

func (s *Integrity) backup(doc *model.Document) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	name := fmt.Sprintf("starboard-%s.json", s.now().UTC().Format("20060102T150405.000Z"))
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	s.logger.Info("Integrity service: backup written", "path", path)
	return path, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *Integrity) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return inputError("sweep interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("Integrity service: sweep failed", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
