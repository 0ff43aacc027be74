package seed

import (
	"context"
	"fmt"
	"log"

	"campusbridge/internal/database"
	"campusbridge/internal/models"
	"campusbridge/internal/repository"
	"campusbridge/internal/service"

	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers          int
	NumSchools        int
	NumMajors         int
	NumPosts          int
	MaxRepliesPerPost int
	ShouldClean       bool
	Seed              int64
}

// DefaultOptions is a small but fully populated dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:          40,
		NumSchools:        8,
		NumMajors:         12,
		NumPosts:          120,
		MaxRepliesPerPost: 12,
		ShouldClean:       true,
		Seed:              1,
	}
}

// Summary counts what a run created.
type Summary struct {
	AdminID      uint
	Users        int
	Schools      int
	Majors       int
	Posts        int
	Replies      int
	Likes        int
	Testimonials int
	Reports      int
}

// Seeder writes demo content through the services.
type Seeder struct {
	db           *gorm.DB
	opts         Options
	users        repository.UserRepository
	factory      *Factory
	gate         *service.WriteGate
	posts        *service.PostService
	replies      *service.ReplyService
	likes        *service.LikeService
	schools      *service.ReviewWorkflow[models.School, *models.School]
	majors       *service.ReviewWorkflow[models.Major, *models.Major]
	reports      *service.ReportService
	testimonials *service.TestimonialService
}

// NewSeeder creates a seeder. Events are not published for seeded content.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	users := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	gate := service.NewWriteGate(users)

	return &Seeder{
		db:           db,
		opts:         opts,
		users:        users,
		factory:      NewFactory(opts.Seed),
		gate:         gate,
		posts:        service.NewPostService(gate, postRepo, likeRepo, schoolRepo, majorRepo),
		replies:      service.NewReplyService(gate, postRepo, repository.NewReplyRepository(db), likeRepo, nil),
		likes:        service.NewLikeService(gate, likeRepo),
		schools:      service.NewSchoolWorkflow(gate, schoolRepo, nil),
		majors:       service.NewMajorWorkflow(gate, majorRepo, nil),
		reports:      service.NewReportService(gate, repository.NewReportRepository(db), nil),
		testimonials: service.NewTestimonialService(gate, repository.NewTestimonialRepository(db), likeRepo),
	}
}

// ClearAll deletes every row the engine owns, dependents first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	tables := database.PersistentModels()
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(tables) - 1; i >= 0; i-- {
		if err := tx.Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}

// Run populates the database.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, err
		}
	}

	admin, users, err := s.seedUsers(ctx)
	if err != nil {
		return sum, fmt.Errorf("users: %w", err)
	}
	sum.AdminID = admin.ID
	sum.Users = len(users) + 1
	log.Printf("✓ %d users created", sum.Users)

	schoolIDs, err := seedCatalog(ctx, s, s.schools, s.factory.BuildSchool, s.opts.NumSchools, admin.ID, users)
	if err != nil {
		return sum, fmt.Errorf("schools: %w", err)
	}
	majorIDs, err := seedCatalog(ctx, s, s.majors, s.factory.BuildMajor, s.opts.NumMajors, admin.ID, users)
	if err != nil {
		return sum, fmt.Errorf("majors: %w", err)
	}
	sum.Schools, sum.Majors = s.opts.NumSchools, s.opts.NumMajors
	log.Printf("✓ %d schools and %d majors submitted", sum.Schools, sum.Majors)

	for i := 0; i < s.opts.NumPosts; i++ {
		post, err := s.seedPost(ctx, users, schoolIDs, majorIDs)
		if err != nil {
			return sum, fmt.Errorf("post %d: %w", i, err)
		}
		sum.Posts++

		replyIDs, err := s.seedReplies(ctx, post.ID, users)
		if err != nil {
			return sum, fmt.Errorf("replies for post %d: %w", post.ID, err)
		}
		sum.Replies += len(replyIDs)

		liked, err := s.seedLikes(ctx, models.SubjectPost, post.ID, users)
		if err != nil {
			return sum, err
		}
		sum.Likes += liked
		for _, id := range replyIDs {
			liked, err := s.seedLikes(ctx, models.SubjectReply, id, users)
			if err != nil {
				return sum, err
			}
			sum.Likes += liked
		}

		if s.factory.Chance(5) {
			reporter := users[s.factory.Intn(len(users))]
			if _, err := s.reports.CreateReport(ctx, service.CreateReportInput{
				TargetKind: models.ReportTargetPost,
				TargetID:   post.ID,
				ReporterID: reporter.ID,
				Reason:     "Looks off-topic",
			}); err != nil {
				return sum, fmt.Errorf("report: %w", err)
			}
			sum.Reports++
		}
	}
	log.Printf("✓ %d posts, %d replies, %d likes, %d reports", sum.Posts, sum.Replies, sum.Likes, sum.Reports)

	for _, u := range users {
		if u.Role != models.RoleAlumni {
			continue
		}
		t, err := s.testimonials.CreateTestimonial(ctx, u.ID, s.factory.TestimonialText())
		if err != nil {
			return sum, fmt.Errorf("testimonial: %w", err)
		}
		sum.Testimonials++
		liked, err := s.seedLikes(ctx, models.SubjectTestimonial, t.ID, users)
		if err != nil {
			return sum, err
		}
		sum.Likes += liked
	}
	log.Printf("✓ %d testimonials", sum.Testimonials)

	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) (*models.User, []*models.User, error) {
	admin := s.factory.BuildUser(models.RoleAdmin)
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		role := models.RoleStudent
		if s.factory.Chance(30) {
			role = models.RoleAlumni
		}
		u := s.factory.BuildUser(role)
		if err := s.users.Create(ctx, u); err != nil {
			return nil, nil, err
		}
		users = append(users, u)
	}
	return admin, users, nil
}

// seedCatalog submits n entities from random users and reviews them: most are
// approved, some rejected, the rest left pending. It returns approved IDs.
func seedCatalog[E any, P models.ReviewablePtr[E]](
	ctx context.Context,
	s *Seeder,
	wf *service.ReviewWorkflow[E, P],
	build func() *E,
	n int,
	adminID uint,
	users []*models.User,
) ([]uint, error) {
	var approved []uint
	for i := 0; i < n; i++ {
		submitter := users[s.factory.Intn(len(users))]
		entity, err := wf.Submit(ctx, build(), submitter.ID)
		if err != nil {
			return nil, err
		}
		id := P(entity).EntityID()
		switch {
		case s.factory.Chance(70):
			if _, err := wf.Approve(ctx, id, adminID); err != nil {
				return nil, err
			}
			approved = append(approved, id)
		case s.factory.Chance(50):
			if _, err := wf.Reject(ctx, id, adminID, "Duplicate of an existing entry"); err != nil {
				return nil, err
			}
		}
	}
	return approved, nil
}

func (s *Seeder) seedPost(ctx context.Context, users []*models.User, schoolIDs, majorIDs []uint) (*models.Post, error) {
	author := users[s.factory.Intn(len(users))]
	title, content := s.factory.PostText()
	in := service.CreatePostInput{
		ActorID:     author.ID,
		Title:       title,
		Content:     content,
		IsAnonymous: s.factory.Chance(15),
		Scope:       models.ScopePublic,
		Category:    s.factory.Category(),
	}

	switch roll := s.factory.Intn(3); {
	case roll == 1 && len(schoolIDs) > 0:
		id := schoolIDs[s.factory.Intn(len(schoolIDs))]
		in.Scope, in.SchoolID, in.Category = models.ScopeUniversity, &id, ""
	case roll == 2 && len(majorIDs) > 0:
		id := majorIDs[s.factory.Intn(len(majorIDs))]
		in.Scope, in.MajorID, in.Category = models.ScopeMajor, &id, ""
	}
	return s.posts.CreatePost(ctx, in)
}

// seedReplies grows a random tree: each reply either starts a new top-level
// branch or answers an earlier reply of the same post.
func (s *Seeder) seedReplies(ctx context.Context, postID uint, users []*models.User) ([]uint, error) {
	n := s.factory.Intn(s.opts.MaxRepliesPerPost + 1)
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		in := service.AddReplyInput{
			PostID:      postID,
			Content:     s.factory.ReplyText(),
			ActorID:     users[s.factory.Intn(len(users))].ID,
			IsAnonymous: s.factory.Chance(10),
		}
		if len(ids) > 0 && s.factory.Chance(60) {
			parent := ids[s.factory.Intn(len(ids))]
			in.ParentReplyID = &parent
		}
		r, err := s.replies.AddReply(ctx, in)
		if err != nil {
			return nil, err
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// seedLikes has a random sample of users like the subject once each.
func (s *Seeder) seedLikes(ctx context.Context, kind models.SubjectKind, id uint, users []*models.User) (int, error) {
	count := 0
	for _, u := range users {
		if !s.factory.Chance(15) {
			continue
		}
		if _, err := s.likes.ToggleLike(ctx, kind, id, u.ID); err != nil {
			return count, fmt.Errorf("like %s %d: %w", kind, id, err)
		}
		count++
	}
	return count, nil
}
