package model

import "time"

// Default credentials seeded into a fresh deployment.
const (
	DefaultTeacher  = "teacher"
	DefaultPassword = "starboard"
)

// DefaultSettings returns the settings of a freshly bootstrapped document.
func DefaultSettings() Settings {
	s := Settings{
		SettingTheme:      "light",
		SettingSound:      true,
		SettingAutoBackup: false,
	}
	s.SetAchievements(DefaultAchievements)
	return s
}

// NewDefaultDocument builds the document adopted when no tier holds a valid one.
func NewDefaultDocument(now time.Time) *Document {
	return &Document{
		Classes: map[string]ClassRecord{},
		Teachers: map[string]string{
			DefaultTeacher: DefaultPassword,
		},
		Settings: DefaultSettings(),
		Metadata: Metadata{
			Version:      DocumentVersion,
			Created:      NewTimestamp(now),
			LastModified: NewTimestamp(now),
			BackupCount:  0,
		},
	}
}
