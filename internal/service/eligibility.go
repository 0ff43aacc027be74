package service

import (
	"strconv"
	"strings"
	"time"

	"campusbridge/internal/models"
)

// enrolledGradeTokens are graduation-year values that mark a current student.
var enrolledGradeTokens = map[string]bool{
	"freshman":        true,
	"sophomore":       true,
	"junior":          true,
	"senior":          true,
	"first year":      true,
	"second year":     true,
	"third year":      true,
	"fourth year":     true,
	"undergraduate":   true,
	"graduate":        true,
	"postgraduate":    true,
	"enrolled":        true,
	"current student": true,
	"high school":     true,
}

// IsEligibleAlumnus reports whether actor may author testimonials at now.
func IsEligibleAlumnus(actor *models.User, now time.Time) bool {
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleAlumni {
		return true
	}
	year := strings.TrimSpace(actor.GraduationYear)
	if year == "" {
		return false
	}
	if n, err := strconv.Atoi(year); err == nil {
		return n <= now.Year()
	}
	return !enrolledGradeTokens[strings.ToLower(year)]
}
