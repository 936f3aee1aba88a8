package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/flashmind/flashmind-backend/internal/model"
)

type studentFixture struct {
	users          *fakeUserRepo
	students       *fakeStudentRepo
	professors     *fakeProfessorRepo
	quizzes        *fakeQuizRepo
	questions      *fakeQuestionRepo
	participations *fakeParticipationRepo
	svc            *StudentService
}

func newStudentFixture(t *testing.T) *studentFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := newFakeUserRepo()
	students := newFakeStudentRepo(users)
	professors := newFakeProfessorRepo()
	questions := newFakeQuestionRepo()
	quizzes := newFakeQuizRepo(questions)
	participations := newFakeParticipationRepo()

	svc := NewStudentService(users, students, professors, quizzes, questions, participations, rdb, zerolog.Nop())
	return &studentFixture{
		users:          users,
		students:       students,
		professors:     professors,
		quizzes:        quizzes,
		questions:      questions,
		participations: participations,
		svc:            svc,
	}
}

func (f *studentFixture) addStudent(t *testing.T, email, username, firstName, lastName string) int {
	t.Helper()
	u := &model.User{
		Email:         email,
		Username:      username,
		PasswordHash:  "x",
		Role:          model.RoleStudent,
		Enabled:       true,
		EmailVerified: true,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	s := &model.Student{UserID: u.ID, FirstName: firstName, LastName: lastName}
	if err := f.students.Create(context.Background(), s); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return u.ID
}

func (f *studentFixture) addQuiz(t *testing.T, title string, questionCount int) int {
	t.Helper()
	prof := &model.Professor{UserID: 9999, FirstName: "Marie", LastName: "Curie"}
	if err := f.professors.Create(context.Background(), prof); err != nil {
		t.Fatalf("create professor: %v", err)
	}
	q := &model.Quiz{Title: title, Code: title, DurationMinutes: 30, ProfessorID: prof.ID}
	if err := f.quizzes.CreateWithQuestions(context.Background(), q, nil); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	f.questions.setCount(q.ID, questionCount)
	return q.ID
}

func TestGetStatsAggregates(t *testing.T) {
	f := newStudentFixture(t)
	userID := f.addStudent(t, "alice@example.com", "alice", "Alice", "Martin")
	quizA := f.addQuiz(t, "QA", 5)
	quizB := f.addQuiz(t, "QB", 5)

	f.participations.insert(userID, quizA, "100", time.Now())
	f.participations.insert(userID, quizB, "50", time.Now().AddDate(0, 0, -1))

	stats, err := f.svc.GetStats(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if stats.TotalQuizzes != 2 {
		t.Errorf("TotalQuizzes = %d, want 2", stats.TotalQuizzes)
	}
	if got := stats.AverageScore.String(); got != "75" {
		t.Errorf("AverageScore = %s, want 75", got)
	}
	if got := stats.BestScore.String(); got != "100" {
		t.Errorf("BestScore = %s, want 100", got)
	}
	if stats.PerfectQuizzes != 1 {
		t.Errorf("PerfectQuizzes = %d, want 1", stats.PerfectQuizzes)
	}
	if got := stats.SuccessRate.String(); got != "75" {
		t.Errorf("SuccessRate = %s, want 75", got)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", stats.CurrentStreak)
	}
	if stats.StudentName != "Alice Martin" {
		t.Errorf("StudentName = %q", stats.StudentName)
	}
}

func TestGetStatsEmptyHistory(t *testing.T) {
	f := newStudentFixture(t)
	f.addStudent(t, "bob@example.com", "bob", "Bob", "Durand")

	stats, err := f.svc.GetStats(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalQuizzes != 0 || stats.CurrentStreak != 0 || stats.PerfectQuizzes != 0 {
		t.Errorf("expected zeroed counters, got %+v", stats)
	}
	if !stats.AverageScore.IsZero() || !stats.BestScore.IsZero() || !stats.SuccessRate.IsZero() {
		t.Errorf("expected zeroed scores, got %+v", stats)
	}
}

func TestStreakRules(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	cases := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"three consecutive days ending today", []int{0, -1, -2}, 3},
		{"gap breaks the run", []int{0, -2, -3}, 1},
		{"run ending yesterday still counts", []int{-1, -2}, 2},
		{"last attempt two days ago", []int{-2, -3}, 0},
		{"several attempts on one day count once", []int{0, 0, -1}, 2},
		{"no attempts", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newStudentFixture(t)
			f.svc.now = func() time.Time { return now }
			userID := f.addStudent(t, "st@example.com", "st", "S", "T")

			for i, offset := range tc.offsets {
				quizID := f.addQuiz(t, tc.name+string(rune('A'+i)), 5)
				f.participations.insert(userID, quizID, "80", day(offset))
			}

			stats, err := f.svc.GetStats(context.Background(), "st@example.com")
			if err != nil {
				t.Fatalf("GetStats: %v", err)
			}
			if stats.CurrentStreak != tc.want {
				t.Errorf("CurrentStreak = %d, want %d", stats.CurrentStreak, tc.want)
			}
		})
	}
}

func TestHistoryRanksSharedForTies(t *testing.T) {
	f := newStudentFixture(t)
	quizID := f.addQuiz(t, "ranked", 10)

	scores := []string{"90", "80", "80", "60"}
	userIDs := make([]int, len(scores))
	for i, score := range scores {
		userIDs[i] = f.addStudent(t, "u"+string(rune('a'+i))+"@example.com", "u"+string(rune('a'+i)), "U", string(rune('A'+i)))
		f.participations.insert(userIDs[i], quizID, score, time.Now())
	}

	wantRanks := []int{1, 2, 2, 4}
	for i, userID := range userIDs {
		u, err := f.users.GetByID(context.Background(), userID)
		if err != nil {
			t.Fatalf("user: %v", err)
		}
		history, err := f.svc.GetHistory(context.Background(), u.Email)
		if err != nil {
			t.Fatalf("GetHistory: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("history length = %d, want 1", len(history))
		}
		if history[0].Rank != wantRanks[i] {
			t.Errorf("rank for score %s = %d, want %d", scores[i], history[0].Rank, wantRanks[i])
		}
		if history[0].TotalParticipants != 4 {
			t.Errorf("TotalParticipants = %d, want 4", history[0].TotalParticipants)
		}
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newStudentFixture(t)
	userID := f.addStudent(t, "hist@example.com", "hist", "H", "S")
	older := f.addQuiz(t, "older", 5)
	newer := f.addQuiz(t, "newer", 5)

	f.participations.insert(userID, older, "50", time.Now().Add(-2*time.Hour))
	f.participations.insert(userID, newer, "70", time.Now().Add(-time.Hour))

	history, err := f.svc.GetHistory(context.Background(), "hist@example.com")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].QuizTitle != "newer" || history[1].QuizTitle != "older" {
		t.Errorf("order = [%s, %s], want [newer, older]", history[0].QuizTitle, history[1].QuizTitle)
	}
}

func TestCreateParticipationRejectsSecondAttempt(t *testing.T) {
	f := newStudentFixture(t)
	f.addStudent(t, "once@example.com", "once", "O", "N")
	quizID := f.addQuiz(t, "single", 5)

	if _, err := f.svc.CreateParticipation(context.Background(), "once@example.com", quizID, mustDecimal("90")); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	_, err := f.svc.CreateParticipation(context.Background(), "once@example.com", quizID, mustDecimal("95"))
	if !errors.Is(err, ErrAlreadyParticipated) {
		t.Fatalf("second attempt error = %v, want ErrAlreadyParticipated", err)
	}
}

func TestCreateParticipationUnknownQuiz(t *testing.T) {
	f := newStudentFixture(t)
	f.addStudent(t, "missing@example.com", "missing", "M", "Q")

	_, err := f.svc.CreateParticipation(context.Background(), "missing@example.com", 42, mustDecimal("90"))
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("error = %v, want ErrQuizNotFound", err)
	}
}

func TestCanParticipate(t *testing.T) {
	f := newStudentFixture(t)
	f.addStudent(t, "can@example.com", "can", "C", "P")
	quizID := f.addQuiz(t, "cp", 5)

	can, err := f.svc.CanParticipate(context.Background(), "can@example.com", quizID)
	if err != nil || !can {
		t.Fatalf("CanParticipate = (%v, %v), want (true, nil)", can, err)
	}

	if _, err := f.svc.CreateParticipation(context.Background(), "can@example.com", quizID, mustDecimal("60")); err != nil {
		t.Fatalf("CreateParticipation: %v", err)
	}

	can, err = f.svc.CanParticipate(context.Background(), "can@example.com", quizID)
	if err != nil || can {
		t.Fatalf("CanParticipate after attempt = (%v, %v), want (false, nil)", can, err)
	}
}

func TestLeaderboardExcludesStudentsWithoutAttempts(t *testing.T) {
	f := newStudentFixture(t)
	activeID := f.addStudent(t, "active@example.com", "active", "A", "C")
	f.addStudent(t, "idle@example.com", "idle", "I", "D")
	quizID := f.addQuiz(t, "lb", 5)
	f.participations.insert(activeID, quizID, "88", time.Now())

	entries, err := f.svc.GetGlobalLeaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetGlobalLeaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Username != "active" {
		t.Errorf("Username = %q, want active", entries[0].Username)
	}
}

func TestLeaderboardOrderAndLimit(t *testing.T) {
	f := newStudentFixture(t)
	quizID := f.addQuiz(t, "lb2", 5)

	for i, score := range []string{"60", "90", "75"} {
		id := f.addStudent(t, "lb"+string(rune('a'+i))+"@example.com", "lb"+string(rune('a'+i)), "L", "B")
		f.participations.insert(id, quizID, score, time.Now())
	}

	entries, err := f.svc.GetGlobalLeaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetGlobalLeaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Username != "lbb" || entries[1].Username != "lbc" {
		t.Errorf("order = [%s, %s], want [lbb, lbc]", entries[0].Username, entries[1].Username)
	}
}

func TestMostActiveOrdersByAttemptCount(t *testing.T) {
	f := newStudentFixture(t)
	busyID := f.addStudent(t, "busy@example.com", "busy", "B", "U")
	calmID := f.addStudent(t, "calm@example.com", "calm", "C", "A")

	for i := 0; i < 3; i++ {
		quizID := f.addQuiz(t, "ma"+string(rune('a'+i)), 5)
		f.participations.insert(busyID, quizID, "50", time.Now())
		if i == 0 {
			f.participations.insert(calmID, quizID, "100", time.Now())
		}
	}

	entries, err := f.svc.GetMostActiveStudents(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetMostActiveStudents: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Username != "busy" || entries[0].TotalQuizzes != 3 {
		t.Errorf("first = %+v, want busy with 3 attempts", entries[0])
	}
}

func TestUpdateProfileBlankFieldsKeepStoredNames(t *testing.T) {
	f := newStudentFixture(t)
	f.addStudent(t, "up@example.com", "up", "Jean", "Dupont")

	profile, err := f.svc.UpdateProfile(context.Background(), "up@example.com", model.UpdateProfileRequest{
		FirstName: "  Pierre  ",
		LastName:  "   ",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if profile.FirstName != "Pierre" {
		t.Errorf("FirstName = %q, want Pierre", profile.FirstName)
	}
	if profile.LastName != "Dupont" {
		t.Errorf("LastName = %q, want Dupont", profile.LastName)
	}
}

func TestParticipationDetailsDerivesCorrectAnswers(t *testing.T) {
	f := newStudentFixture(t)
	userID := f.addStudent(t, "det@example.com", "det", "D", "T")
	quizID := f.addQuiz(t, "det", 8)
	f.participations.insert(userID, quizID, "75", time.Now())

	detail, err := f.svc.GetParticipationDetails(context.Background(), "det@example.com", 1)
	if err != nil {
		t.Fatalf("GetParticipationDetails: %v", err)
	}
	if detail.CorrectAnswers != 6 {
		t.Errorf("CorrectAnswers = %d, want 6", detail.CorrectAnswers)
	}
	if detail.QuestionCount != 8 {
		t.Errorf("QuestionCount = %d, want 8", detail.QuestionCount)
	}
}

func TestParticipationDetailsOwnershipEnforced(t *testing.T) {
	f := newStudentFixture(t)
	ownerID := f.addStudent(t, "owner@example.com", "owner", "O", "W")
	f.addStudent(t, "other@example.com", "other", "O", "T")
	quizID := f.addQuiz(t, "own", 5)
	f.participations.insert(ownerID, quizID, "80", time.Now())

	_, err := f.svc.GetParticipationDetails(context.Background(), "other@example.com", 1)
	if !errors.Is(err, ErrNotParticipationOwner) {
		t.Fatalf("error = %v, want ErrNotParticipationOwner", err)
	}
}

func TestRecommendedExcludesAttemptedQuizzes(t *testing.T) {
	f := newStudentFixture(t)
	userID := f.addStudent(t, "rec@example.com", "rec", "R", "C")
	attempted := f.addQuiz(t, "seen", 5)
	fresh := f.addQuiz(t, "fresh", 5)
	f.participations.insert(userID, attempted, "70", time.Now())

	quizzes, err := f.svc.GetRecommendedQuizzes(context.Background(), "rec@example.com", 10)
	if err != nil {
		t.Fatalf("GetRecommendedQuizzes: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("quizzes = %d, want 1", len(quizzes))
	}
	if quizzes[0].ID != fresh {
		t.Errorf("recommended quiz = %d, want %d", quizzes[0].ID, fresh)
	}
}

func TestStudentLookupUnknownEmail(t *testing.T) {
	f := newStudentFixture(t)

	_, err := f.svc.GetStats(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("error = %v, want ErrStudentNotFound", err)
	}
}
