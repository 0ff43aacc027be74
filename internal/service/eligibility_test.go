package service

import (
	"testing"
	"time"

	"campusbridge/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsEligibleAlumnus(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"nil actor", nil, false},
		{"alumni role", &models.User{Role: models.RoleAlumni}, true},
		{"alumni role without year", &models.User{Role: models.RoleAlumni, GraduationYear: "sophomore"}, true},
		{"graduated last year", &models.User{Role: models.RoleStudent, GraduationYear: "2025"}, true},
		{"graduates this year", &models.User{Role: models.RoleStudent, GraduationYear: "2026"}, true},
		{"graduates next year", &models.User{Role: models.RoleStudent, GraduationYear: "2027"}, false},
		{"padded year", &models.User{GraduationYear: " 2019 "}, true},
		{"enrolled token", &models.User{GraduationYear: "Junior"}, false},
		{"free text class", &models.User{GraduationYear: "Class of '09"}, true},
		{"blank year", &models.User{Role: models.RoleStudent, GraduationYear: "   "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEligibleAlumnus(tt.actor, now))
		})
	}
}
