package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewStudentID generates a student id from the creation time and a random
// suffix. Ids are never reused.
func NewStudentID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "student_" + strconv.FormatInt(now.UnixMilli(), 36) + "_" + suffix
}

// ClampStars applies delta to stars, never going below zero.
func ClampStars(stars, delta int) int {
	stars += delta
	if stars < 0 {
		return 0
	}
	return stars
}
