package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/flashmind/flashmind-backend/internal/config"
	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

// Student business errors.
var (
	ErrStudentNotFound       = errors.New("student profile not found")
	ErrAlreadyParticipated   = errors.New("student already attempted this quiz")
	ErrParticipationNotFound = errors.New("participation not found")
	ErrNotParticipationOwner = errors.New("participation belongs to another student")
)

const (
	participationLockTTL = 10 * time.Second
	leaderboardCacheTTL  = 30 * time.Second
)

var hundred = decimal.NewFromInt(100)

// StudentService handles the student portal: attempts, statistics,
// history, leaderboards and profile updates.
type StudentService struct {
	userRepo          UserRepository
	studentRepo       StudentRepository
	professorRepo     ProfessorRepository
	quizRepo          QuizRepository
	questionRepo      QuestionRepository
	participationRepo ParticipationRepository
	redis             *redis.Client
	log               zerolog.Logger

	// now is swapped in tests to pin the streak calendar.
	now func() time.Time
}

// NewStudentService creates a new StudentService.
func NewStudentService(
	userRepo UserRepository,
	studentRepo StudentRepository,
	professorRepo ProfessorRepository,
	quizRepo QuizRepository,
	questionRepo QuestionRepository,
	participationRepo ParticipationRepository,
	redisClient *redis.Client,
	log zerolog.Logger,
) *StudentService {
	return &StudentService{
		userRepo:          userRepo,
		studentRepo:       studentRepo,
		professorRepo:     professorRepo,
		quizRepo:          quizRepo,
		questionRepo:      questionRepo,
		participationRepo: participationRepo,
		redis:             redisClient,
		log:               log,
		now:               time.Now,
	}
}

// studentByEmail resolves the JWT subject to its account and student
// profile.
func (s *StudentService) studentByEmail(ctx context.Context, email string) (*model.User, *model.Student, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, err
	}
	student, err := s.studentRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, err
	}
	return user, student, nil
}

// GetProfile returns the calling student's profile.
func (s *StudentService) GetProfile(ctx context.Context, email string) (*model.StudentProfile, error) {
	user, student, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &model.StudentProfile{
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Username:  user.Username,
		Email:     user.Email,
	}, nil
}

// UpdateProfile updates the mutable profile fields. Blank or
// whitespace-only values keep the stored name.
func (s *StudentService) UpdateProfile(ctx context.Context, email string, req model.UpdateProfileRequest) (*model.StudentProfile, error) {
	user, student, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	firstName := student.FirstName
	if v := strings.TrimSpace(req.FirstName); v != "" {
		firstName = v
	}
	lastName := student.LastName
	if v := strings.TrimSpace(req.LastName); v != "" {
		lastName = v
	}

	if err := s.studentRepo.UpdateNames(ctx, student.ID, firstName, lastName); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return &model.StudentProfile{
		FirstName: firstName,
		LastName:  lastName,
		Username:  user.Username,
		Email:     user.Email,
	}, nil
}

// CanParticipate reports whether the calling student may still attempt
// the quiz.
func (s *StudentService) CanParticipate(ctx context.Context, email string, quizID int) (bool, error) {
	user, _, err := s.studentByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrQuizNotFound
		}
		return false, err
	}
	attempted, err := s.participationRepo.ExistsByUserAndQuiz(ctx, user.ID, quizID)
	if err != nil {
		return false, err
	}
	return !attempted, nil
}

// CreateParticipation records a completed attempt, enforcing the
// one-attempt-per-quiz rule. A short Redis lock serializes concurrent
// submissions of the same (student, quiz) pair; the unique constraint
// on participations backstops the check if Redis is unavailable.
func (s *StudentService) CreateParticipation(ctx context.Context, email string, quizID int, score decimal.Decimal) (*model.Participation, error) {
	user, _, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	lockKey := config.CacheKey.ParticipationLockKey(user.ID, quizID)
	acquired, err := s.redis.SetNX(ctx, lockKey, "1", participationLockTTL).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("participation lock unavailable, relying on unique constraint")
	} else if !acquired {
		return nil, ErrAlreadyParticipated
	} else {
		defer s.redis.Del(context.WithoutCancel(ctx), lockKey)
	}

	attempted, err := s.participationRepo.ExistsByUserAndQuiz(ctx, user.ID, quizID)
	if err != nil {
		return nil, err
	}
	if attempted {
		return nil, ErrAlreadyParticipated
	}

	participation := &model.Participation{
		QuizID: quizID,
		UserID: user.ID,
		Score:  score,
	}
	if err := s.participationRepo.Create(ctx, participation); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			return nil, ErrAlreadyParticipated
		}
		return nil, fmt.Errorf("create participation: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Int("quiz_id", quizID).Str("score", score.String()).Msg("participation recorded")
	return participation, nil
}

// GetStats aggregates the calling student's participation history into
// the dashboard statistics.
func (s *StudentService) GetStats(ctx context.Context, email string) (*model.StudentStats, error) {
	user, student, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	parts, err := s.participationRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	stats := &model.StudentStats{
		StudentName:   student.FullName(),
		Username:      user.Username,
		TotalQuizzes:  len(parts),
		AverageScore:  decimal.Zero,
		BestScore:     decimal.Zero,
		SuccessRate:   decimal.Zero,
		CurrentStreak: s.streak(parts),
	}
	if len(parts) == 0 {
		return stats, nil
	}

	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.Score)
		if p.Score.GreaterThan(stats.BestScore) {
			stats.BestScore = p.Score
		}
		if p.Score.Equal(hundred) {
			stats.PerfectQuizzes++
		}
	}

	count := decimal.NewFromInt(int64(len(parts)))
	stats.AverageScore = total.DivRound(count, 2)
	stats.SuccessRate = total.DivRound(count.Mul(hundred), 4).Mul(hundred).Round(2)
	return stats, nil
}

// streak counts the consecutive calendar days, ending today or
// yesterday, on which the student completed at least one quiz. Days are
// taken in server-local time.
func (s *StudentService) streak(parts []model.Participation) int {
	if len(parts) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(parts))
	for _, p := range parts {
		seen[dateOf(p.CreatedAt)] = struct{}{}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := dateOf(s.now())
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			streak++
			continue
		}
		break
	}
	return streak
}

func dateOf(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// GetHistory returns the calling student's attempts, newest first, each
// annotated with the student's rank among all participants of the quiz.
func (s *StudentService) GetHistory(ctx context.Context, email string) ([]model.QuizHistoryEntry, error) {
	user, _, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	parts, err := s.participationRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].CreatedAt.After(parts[j].CreatedAt) })

	professorNames, err := s.professorRepo.NamesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("professor names: %w", err)
	}

	quizzes := make(map[int]*model.Quiz, len(parts))
	history := make([]model.QuizHistoryEntry, 0, len(parts))
	for _, p := range parts {
		quiz, ok := quizzes[p.QuizID]
		if !ok {
			quiz, err = s.quizRepo.GetByID(ctx, p.QuizID)
			if err != nil {
				return nil, fmt.Errorf("quiz %d: %w", p.QuizID, err)
			}
			quizzes[p.QuizID] = quiz
		}

		rank, total, err := s.rankInQuiz(ctx, p)
		if err != nil {
			return nil, err
		}

		history = append(history, model.QuizHistoryEntry{
			ParticipationID:   p.ID,
			QuizID:            quiz.ID,
			QuizTitle:         quiz.Title,
			QuizDescription:   quiz.Description,
			ProfessorName:     professorNames[quiz.ProfessorID],
			Score:             p.Score,
			CompletedAt:       p.CreatedAt,
			Rank:              rank,
			TotalParticipants: total,
		})
	}
	return history, nil
}

// rankInQuiz places a participation among every attempt at the same
// quiz: one plus the number of strictly higher scores, ties sharing a
// rank.
func (s *StudentService) rankInQuiz(ctx context.Context, p model.Participation) (rank, total int, err error) {
	all, err := s.participationRepo.ListByQuiz(ctx, p.QuizID)
	if err != nil {
		return 0, 0, fmt.Errorf("rank quiz %d: %w", p.QuizID, err)
	}
	rank = 1
	for _, other := range all {
		if other.Score.GreaterThan(p.Score) {
			rank++
		}
	}
	return rank, len(all), nil
}

// GetParticipationDetails returns one of the calling student's attempts
// with the derived correct-answer count.
func (s *StudentService) GetParticipationDetails(ctx context.Context, email string, participationID int) (*model.ParticipationDetail, error) {
	user, _, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	p, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	if p.UserID != user.ID {
		return nil, ErrNotParticipationOwner
	}

	quiz, err := s.quizRepo.GetByID(ctx, p.QuizID)
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", p.QuizID, err)
	}
	questionCount, err := s.questionRepo.CountByQuiz(ctx, p.QuizID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	return &model.ParticipationDetail{
		ID:              p.ID,
		QuizID:          quiz.ID,
		QuizTitle:       quiz.Title,
		Score:           p.Score,
		CompletedAt:     p.CreatedAt,
		DurationMinutes: quiz.DurationMinutes,
		QuestionCount:   questionCount,
		CorrectAnswers:  correctAnswers(p.Score, questionCount),
	}, nil
}

// correctAnswers derives the answer count from the percentage score.
// The division rounds half away from zero, so uneven question counts
// land on the nearest whole answer.
func correctAnswers(score decimal.Decimal, questionCount int) int {
	if questionCount == 0 {
		return 0
	}
	return int(score.Mul(decimal.NewFromInt(int64(questionCount))).DivRound(hundred, 0).IntPart())
}

// GetGlobalLeaderboard ranks every student with at least one attempt by
// average score, best first. Results are cached in Redis for a short
// window since the ranking is recomputed from every participation.
func (s *StudentService) GetGlobalLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	cacheKey := config.CacheKey.LeaderboardKey(limit)
	if cached, ok := s.cachedEntries(ctx, cacheKey); ok {
		return cached, nil
	}

	entries, err := s.rankStudents(ctx, func(a, b model.LeaderboardEntry) bool {
		return a.AverageScore.GreaterThan(b.AverageScore)
	})
	if err != nil {
		return nil, err
	}
	entries = truncate(entries, limit)

	s.cacheEntries(ctx, cacheKey, entries)
	return entries, nil
}

// GetMostActiveStudents ranks every student with at least one attempt
// by attempt count, busiest first.
func (s *StudentService) GetMostActiveStudents(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	cacheKey := config.CacheKey.MostActiveKey(limit)
	if cached, ok := s.cachedEntries(ctx, cacheKey); ok {
		return cached, nil
	}

	entries, err := s.rankStudents(ctx, func(a, b model.LeaderboardEntry) bool {
		return a.TotalQuizzes > b.TotalQuizzes
	})
	if err != nil {
		return nil, err
	}
	entries = truncate(entries, limit)

	s.cacheEntries(ctx, cacheKey, entries)
	return entries, nil
}

// rankStudents aggregates every participation per student, drops
// students without attempts and sorts by the given order. The sort is
// stable so students tied on the ranking key keep a deterministic
// order.
func (s *StudentService) rankStudents(ctx context.Context, less func(a, b model.LeaderboardEntry) bool) ([]model.LeaderboardEntry, error) {
	students, err := s.studentRepo.ListWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	parts, err := s.participationRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	type agg struct {
		count int
		total decimal.Decimal
	}
	byUser := make(map[int]*agg)
	for _, p := range parts {
		a, ok := byUser[p.UserID]
		if !ok {
			a = &agg{total: decimal.Zero}
			byUser[p.UserID] = a
		}
		a.count++
		a.total = a.total.Add(p.Score)
	}

	entries := make([]model.LeaderboardEntry, 0, len(byUser))
	for _, st := range students {
		a, ok := byUser[st.UserID]
		if !ok {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			StudentName:  st.FullName(),
			Username:     st.Username,
			TotalQuizzes: a.count,
			AverageScore: a.total.DivRound(decimal.NewFromInt(int64(a.count)), 2),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	return entries, nil
}

func truncate(entries []model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func (s *StudentService) cachedEntries(ctx context.Context, key string) ([]model.LeaderboardEntry, bool) {
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
		}
		return nil, false
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *StudentService) cacheEntries(ctx context.Context, key string, entries []model.LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, leaderboardCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
	}
}

// GetRecommendedQuizzes returns the newest quizzes the calling student
// has not attempted yet.
func (s *StudentService) GetRecommendedQuizzes(ctx context.Context, email string, limit int) ([]model.QuizSummary, error) {
	user, _, err := s.studentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.quizRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	parts, err := s.participationRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	attempted := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		attempted[p.QuizID] = struct{}{}
	}

	counts, err := s.questionRepo.CountsByQuiz(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	professorNames, err := s.professorRepo.NamesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("professor names: %w", err)
	}

	out := make([]model.QuizSummary, 0, limit)
	for _, q := range quizzes {
		if _, ok := attempted[q.ID]; ok {
			continue
		}
		out = append(out, model.QuizSummary{
			ID:              q.ID,
			Title:           q.Title,
			Description:     q.Description,
			Code:            q.Code,
			DurationMinutes: q.DurationMinutes,
			QuestionCount:   counts[q.ID],
			ProfessorName:   professorNames[q.ProfessorID],
			Difficulty:      DifficultyFor(counts[q.ID]),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
