package service

import (
	"context"
	"sync"
	"testing"

	"campusbridge/internal/events"
	"campusbridge/internal/featureflags"
	"campusbridge/internal/models"
	"campusbridge/internal/repository"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Name() string { return "recording" }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db           *gorm.DB
	gate         *WriteGate
	posts        *PostService
	replies      *ReplyService
	likes        *LikeService
	schools      *ReviewWorkflow[models.School, *models.School]
	majors       *ReviewWorkflow[models.Major, *models.Major]
	reports      *ReportService
	testimonials *TestimonialService
	events       *recordingPublisher
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	users := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	pub := &recordingPublisher{}

	gate := NewWriteGate(users)
	return &testEnv{
		db:           db,
		gate:         gate,
		posts:        NewPostService(gate, postRepo, likeRepo, schoolRepo, majorRepo),
		replies:      NewReplyService(gate, postRepo, replyRepo, likeRepo, featureflags.NewManager(flags)),
		likes:        NewLikeService(gate, likeRepo),
		schools:      NewSchoolWorkflow(gate, schoolRepo, pub),
		majors:       NewMajorWorkflow(gate, majorRepo, pub),
		reports:      NewReportService(gate, repository.NewReportRepository(db), pub),
		testimonials: NewTestimonialService(gate, repository.NewTestimonialRepository(db), likeRepo),
		events:       pub,
	}
}

func (e *testEnv) user(t *testing.T, u models.User) *models.User {
	t.Helper()
	return testutil.CreateUser(t, e.db, u)
}

func (e *testEnv) post(t *testing.T, authorID uint) *models.Post {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		ActorID:  authorID,
		Title:    "Is the night bus safe?",
		Content:  "Asking for late labs.",
		Category: "campus-life",
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) reply(t *testing.T, postID uint, parent *uint, actorID uint, content string) *models.Reply {
	t.Helper()
	r, err := e.replies.AddReply(context.Background(), AddReplyInput{PostID: postID, ParentReplyID: parent, Content: content, ActorID: actorID})
	require.NoError(t, err)
	return r
}

func (e *testEnv) mute(t *testing.T, actorID uint) {
	t.Helper()
	require.NoError(t, e.gate.SetMuted(context.Background(), actorID, true))
}
