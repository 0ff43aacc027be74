// Package seed creates demo data for development databases. Content goes
// through the services so counters and review state stay consistent.
package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"campusbridge/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	postCategories = []string{
		"admissions", "housing", "courses", "careers", "financial-aid", "campus-life", "internships",
	}

	degreeLevels = []string{"BA", "BSc", "MSc", "MBA", "PhD"}

	disciplines = []string{
		"Engineering", "Humanities", "Natural Sciences", "Social Sciences", "Business", "Arts", "Health",
	}

	gradeTokens = []string{"Freshman", "Sophomore", "Junior", "Senior"}
)

// Factory builds unsaved domain values from a deterministic faker.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
	seen  map[string]bool
}

// NewFactory returns a Factory. The same seed yields the same data.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed), now: time.Now(), seen: map[string]bool{}}
}

// unique appends a counter to name until it has not been handed out before.
func (f *Factory) unique(name string) string {
	candidate := name
	for i := 2; f.seen[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s %d", name, i)
	}
	f.seen[strings.ToLower(candidate)] = true
	return candidate
}

// BuildUser returns a user of the given role. Students get a graduation value
// that keeps them ineligible for testimonials; alumni get a past year.
func (f *Factory) BuildUser(role models.Role) *models.User {
	u := &models.User{
		Username: f.unique(strings.ToLower(f.faker.Username())),
		Role:     role,
	}
	year := f.now.Year()
	switch role {
	case models.RoleAlumni:
		u.GraduationYear = strconv.Itoa(f.faker.Number(year-30, year-1))
	case models.RoleStudent:
		if f.faker.Bool() {
			u.GraduationYear = strconv.Itoa(f.faker.Number(year+1, year+4))
		} else {
			u.GraduationYear = f.faker.RandomString(gradeTokens)
		}
	case models.RoleAdmin:
		u.IsAdmin = true
	}
	return u
}

func (f *Factory) BuildSchool() *models.School {
	return &models.School{
		Name:        f.unique(f.faker.City() + " University"),
		Description: f.faker.Sentence(12),
		Location:    f.faker.City() + ", " + f.faker.StateAbr(),
		Website:     f.faker.URL(),
	}
}

func (f *Factory) BuildMajor() *models.Major {
	return &models.Major{
		Name:        f.unique(capitalize(f.faker.HipsterWord()) + " Studies"),
		Description: f.faker.Sentence(10),
		Discipline:  f.faker.RandomString(disciplines),
		DegreeLevel: f.faker.RandomString(degreeLevels),
	}
}

// PostText returns a question title and body.
func (f *Factory) PostText() (title, content string) {
	title = strings.TrimSuffix(f.faker.Question(), "?") + "?"
	return title, f.faker.Paragraph(1, 3, 12, "\n")
}

func (f *Factory) ReplyText() string {
	return f.faker.Sentence(f.faker.Number(4, 20))
}

func (f *Factory) TestimonialText() string {
	return f.faker.Paragraph(1, 2, 14, " ")
}

func (f *Factory) Category() string {
	return f.faker.RandomString(postCategories)
}

// Chance reports true with probability percent/100.
func (f *Factory) Chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
