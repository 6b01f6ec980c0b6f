package model

// Well-known settings keys. Settings is free-form, other keys are kept as is.
const (
	SettingTheme        = "theme"
	SettingSound        = "soundEnabled"
	SettingAutoBackup   = "autoBackup"
	SettingAchievements = "achievements"
)

// Settings is the free-form configuration map of a document.
type Settings map[string]any

// Achievements are the star thresholds for the bronze, silver and gold badges.
type Achievements struct {
	Bronze int `json:"bronze"`
	Silver int `json:"silver"`
	Gold   int `json:"gold"`
}

// DefaultAchievements is used when a document has no usable thresholds.
var DefaultAchievements = Achievements{Bronze: 10, Silver: 25, Gold: 50}

// Valid reports whether the thresholds are positive and strictly ascending.
func (a Achievements) Valid() bool {
	return a.Bronze > 0 && a.Bronze < a.Silver && a.Silver < a.Gold
}

// Badge returns the highest badge earned with the given stars, or "".
func (a Achievements) Badge(stars int) string {
	switch {
	case stars >= a.Gold:
		return "gold"
	case stars >= a.Silver:
		return "silver"
	case stars >= a.Bronze:
		return "bronze"
	default:
		return ""
	}
}

// Achievements returns the configured thresholds, falling back to
// DefaultAchievements when they are missing or not ascending.
func (s Settings) Achievements() Achievements {
	raw, ok := s[SettingAchievements].(map[string]any)
	if !ok {
		return DefaultAchievements
	}

	a := Achievements{}
	var okB, okS, okG bool
	a.Bronze, okB = toInt(raw["bronze"])
	a.Silver, okS = toInt(raw["silver"])
	a.Gold, okG = toInt(raw["gold"])
	if !okB || !okS || !okG || !a.Valid() {
		return DefaultAchievements
	}
	return a
}

// SetAchievements stores thresholds in the map form used by decoded JSON.
func (s Settings) SetAchievements(a Achievements) {
	s[SettingAchievements] = map[string]any{
		"bronze": a.Bronze,
		"silver": a.Silver,
		"gold":   a.Gold,
	}
}

// Bool returns a boolean setting, or def when unset or of another type.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// String returns a string setting, or def when unset or of another type.
func (s Settings) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
