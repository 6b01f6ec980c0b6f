package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
)

// ClassSummary is one row of the class list.
type ClassSummary struct {
	Name        string
	Description string
	Students    int
	Stars       int
	Created     time.Time
}

// Standing is one leaderboard row.
type Standing struct {
	Rank  int
	Class string
	ID    string
	Name  string
	Stars int
	Badge string
}

// Classroom implements the portal operations. Every mutation reads a
// snapshot through the repository, changes it and saves it whole.
type Classroom struct {
	repo        model.Repository
	credentials *Credentials
	sessions    model.SessionManager
	now         func() time.Time
	logger      *logger.Logger
}

func NewClassroom(
	repo model.Repository,
	credentials *Credentials,
	sessions model.SessionManager,
	logger *logger.Logger,
) *Classroom {
	return &Classroom{
		repo:        repo,
		credentials: credentials,
		sessions:    sessions,
		now:         time.Now,
		logger:      logger,
	}
}

func inputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

func (s *Classroom) save(ctx context.Context, doc *model.Document, op string) error {
	if err := s.repo.Save(ctx, doc); err != nil {
		s.logger.Error("Classroom service: failed to save document",
			"operation", op,
			"error", err.Error())
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *Classroom) AddClass(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return inputError("class name is required")
	}

	doc := s.repo.Data()
	if _, ok := doc.Classes[name]; ok {
		return inputError("class %q already exists", name)
	}

	doc.Classes[name] = model.ClassRecord{
		Students:    map[string]model.StudentRecord{},
		Created:     model.NewTimestamp(s.now()),
		Description: strings.TrimSpace(description),
	}

	if err := s.save(ctx, doc, "add_class"); err != nil {
		return err
	}

	s.logger.Info("Classroom service: class added", "class", name)
	return nil
}

func (s *Classroom) RemoveClass(ctx context.Context, name string) error {
	doc := s.repo.Data()
	if _, ok := doc.Classes[name]; !ok {
		return inputError("class %q not found", name)
	}

	delete(doc.Classes, name)

	if err := s.save(ctx, doc, "remove_class"); err != nil {
		return err
	}

	s.logger.Info("Classroom service: class removed", "class", name)
	return nil
}

// Classes lists every class sorted by name.
func (s *Classroom) Classes() []ClassSummary {
	doc := s.repo.Data()

	out := make([]ClassSummary, 0, len(doc.Classes))
	for name, class := range doc.Classes {
		summary := ClassSummary{
			Name:        name,
			Description: class.Description,
			Students:    len(class.Students),
			Created:     class.Created.Time,
		}
		for _, student := range class.Students {
			summary.Stars += student.Stars
		}
		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Classroom) lookupStudent(doc *model.Document, className, id string) (model.ClassRecord, model.StudentRecord, error) {
	class, ok := doc.Classes[className]
	if !ok {
		return model.ClassRecord{}, model.StudentRecord{}, inputError("class %q not found", className)
	}
	student, ok := class.Students[id]
	if !ok {
		return model.ClassRecord{}, model.StudentRecord{}, inputError("student %q not found in class %q", id, className)
	}
	return class, student, nil
}

// AddStudent creates a student with zero stars and returns the generated id.
func (s *Classroom) AddStudent(ctx context.Context, className, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", inputError("student name is required")
	}

	doc := s.repo.Data()
	class, ok := doc.Classes[className]
	if !ok {
		return "", inputError("class %q not found", className)
	}

	now := s.now()
	id := model.NewStudentID(now)
	for s.studentIDTaken(doc, id) {
		id = model.NewStudentID(now)
	}

	class.Students[id] = model.StudentRecord{
		Name:    name,
		Stars:   0,
		Created: model.NewTimestamp(now),
	}

	if err := s.save(ctx, doc, "add_student"); err != nil {
		return "", err
	}

	s.logger.Info("Classroom service: student added",
		"class", className,
		"student_id", id)
	return id, nil
}

func (s *Classroom) studentIDTaken(doc *model.Document, id string) bool {
	for _, class := range doc.Classes {
		if _, ok := class.Students[id]; ok {
			return true
		}
	}
	return false
}

func (s *Classroom) RemoveStudent(ctx context.Context, className, id string) error {
	doc := s.repo.Data()
	class, _, err := s.lookupStudent(doc, className, id)
	if err != nil {
		return err
	}

	delete(class.Students, id)

	return s.save(ctx, doc, "remove_student")
}

func (s *Classroom) RenameStudent(ctx context.Context, className, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return inputError("student name is required")
	}

	doc := s.repo.Data()
	class, student, err := s.lookupStudent(doc, className, id)
	if err != nil {
		return err
	}

	student.Name = name
	class.Students[id] = student

	return s.save(ctx, doc, "rename_student")
}

// AdjustStars adds delta to a student's stars, clamping at zero, and returns
// the new count.
func (s *Classroom) AdjustStars(ctx context.Context, className, id string, delta int) (int, error) {
	doc := s.repo.Data()
	class, student, err := s.lookupStudent(doc, className, id)
	if err != nil {
		return 0, err
	}

	student.Stars = model.ClampStars(student.Stars, delta)
	class.Students[id] = student

	if err := s.save(ctx, doc, "adjust_stars"); err != nil {
		return 0, err
	}

	s.logger.Debug("Classroom service: stars adjusted",
		"class", className,
		"student_id", id,
		"delta", delta,
		"stars", student.Stars)
	return student.Stars, nil
}

func (s *Classroom) ResetStars(ctx context.Context, className string) error {
	doc := s.repo.Data()
	class, ok := doc.Classes[className]
	if !ok {
		return inputError("class %q not found", className)
	}

	for id, student := range class.Students {
		student.Stars = 0
		class.Students[id] = student
	}

	return s.save(ctx, doc, "reset_stars")
}

// Leaderboard ranks the students of className, or of every class when
// className is empty, by stars descending then name. Equal star counts
// share a rank.
func (s *Classroom) Leaderboard(className string) ([]Standing, error) {
	doc := s.repo.Data()
	achievements := doc.Settings.Achievements()

	var standings []Standing
	collect := func(name string, class model.ClassRecord) {
		for id, student := range class.Students {
			standings = append(standings, Standing{
				Class: name,
				ID:    id,
				Name:  student.Name,
				Stars: student.Stars,
				Badge: achievements.Badge(student.Stars),
			})
		}
	}

	if className == "" {
		for name, class := range doc.Classes {
			collect(name, class)
		}
	} else {
		class, ok := doc.Classes[className]
		if !ok {
			return nil, inputError("class %q not found", className)
		}
		collect(className, class)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	rank := 0
	for i := range standings {
		if i == 0 || standings[i].Stars != standings[i-1].Stars {
			rank++
		}
		standings[i].Rank = rank
	}

	return standings, nil
}

// Teachers lists teacher usernames sorted.
func (s *Classroom) Teachers() []string {
	doc := s.repo.Data()
	out := make([]string, 0, len(doc.Teachers))
	for user := range doc.Teachers {
		out = append(out, user)
	}
	sort.Strings(out)
	return out
}

func (s *Classroom) AddTeacher(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return inputError("username is required")
	}
	if password == "" {
		return inputError("password is required")
	}
	if password != confirm {
		return inputError("passwords do not match")
	}

	doc := s.repo.Data()
	if _, ok := doc.Teachers[username]; ok {
		return inputError("teacher %q already exists", username)
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return err
	}
	doc.Teachers[username] = hash

	if err := s.save(ctx, doc, "add_teacher"); err != nil {
		return err
	}

	s.logger.Info("Classroom service: teacher added", "username", username)
	return nil
}

func (s *Classroom) ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirm string) error {
	if newPassword == "" {
		return inputError("password is required")
	}
	if newPassword != confirm {
		return inputError("passwords do not match")
	}

	doc := s.repo.Data()
	stored, ok := doc.Teachers[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if ok, _ := s.credentials.Verify(stored, oldPassword); !ok {
		return ErrInvalidCredentials
	}

	hash, err := s.credentials.Hash(newPassword)
	if err != nil {
		return err
	}
	doc.Teachers[username] = hash

	return s.save(ctx, doc, "change_password")
}

func (s *Classroom) RemoveTeacher(ctx context.Context, username string) error {
	doc := s.repo.Data()
	if _, ok := doc.Teachers[username]; !ok {
		return inputError("teacher %q not found", username)
	}
	if len(doc.Teachers) == 1 {
		return inputError("cannot remove the last teacher")
	}

	delete(doc.Teachers, username)

	if err := s.save(ctx, doc, "remove_teacher"); err != nil {
		return err
	}

	s.logger.Info("Classroom service: teacher removed", "username", username)
	return nil
}

// Login verifies credentials and returns a session token. A plaintext
// credential that matches is rewritten as a hash.
func (s *Classroom) Login(ctx context.Context, username, password string) (string, error) {
	doc := s.repo.Data()
	stored, ok := doc.Teachers[username]
	if !ok {
		s.logger.Info("Classroom service: login failed", "username", username)
		return "", ErrInvalidCredentials
	}

	ok, upgrade := s.credentials.Verify(stored, password)
	if !ok {
		s.logger.Info("Classroom service: login failed", "username", username)
		return "", ErrInvalidCredentials
	}

	if upgrade {
		hash, err := s.credentials.Hash(password)
		if err != nil {
			return "", err
		}
		doc.Teachers[username] = hash
		if err := s.save(ctx, doc, "upgrade_credential"); err != nil {
			s.logger.Warn("Classroom service: credential upgrade not saved",
				"username", username,
				"error", err.Error())
		}
	}

	token, err := s.sessions.GenerateSessionToken(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.Info("Classroom service: teacher logged in", "username", username)
	return token, nil
}

// Authorize resolves a session token to a username that still exists.
func (s *Classroom) Authorize(token string) (string, error) {
	if token == "" {
		return "", model.ErrSessionMissing
	}

	username, err := s.sessions.ParseSessionToken(token)
	if err != nil {
		return "", err
	}

	if _, ok := s.repo.Data().Teachers[username]; !ok {
		return "", model.ErrSessionInvalid
	}
	return username, nil
}

// Export writes the document as indented JSON.
func (s *Classroom) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.repo.Data()); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Import replaces the whole document with the one read from r.
func (s *Classroom) Import(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return inputError("import is not a JSON object")
	}
	classes, ok := top["classes"]
	if !ok || len(classes) == 0 || classes[0] != '{' {
		return inputError("import has no classes object")
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		if errors.Is(err, model.ErrInvalidDocument) {
			return err
		}
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("Classroom service: document imported", "classes", len(doc.Classes))
	return nil
}

// Reset replaces the document with a fresh default.
func (s *Classroom) Reset(ctx context.Context) error {
	if err := s.save(ctx, model.NewDefaultDocument(s.now()), "reset"); err != nil {
		return err
	}
	s.logger.Warn("Classroom service: document reset to defaults")
	return nil
}

func (s *Classroom) UpdateSettings(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return inputError("setting key is required")
	}
	if key == model.SettingAchievements {
		a, ok := value.(model.Achievements)
		if !ok {
			return inputError("achievements must be set with UpdateAchievements")
		}
		return s.UpdateAchievements(ctx, a)
	}

	doc := s.repo.Data()
	doc.Settings[key] = value

	return s.save(ctx, doc, "update_settings")
}

func (s *Classroom) UpdateAchievements(ctx context.Context, a model.Achievements) error {
	if !a.Valid() {
		return inputError("achievement thresholds must be positive and ascending")
	}

	doc := s.repo.Data()
	doc.Settings.SetAchievements(a)

	return s.save(ctx, doc, "update_achievements")
}
