package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

// Quiz business errors.
var (
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrProfessorNotFound = errors.New("professor profile not found")
	ErrNotQuizAuthor     = errors.New("quiz belongs to another professor")
	ErrCodesExhausted    = errors.New("could not allocate a unique quiz code")
	ErrScoreOutOfRange   = errors.New("score outside the 0-100 range")
)

const (
	codeCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 20
)

// AttemptRecorder records a completed quiz attempt. StudentService
// implements it with the duplicate-participation guard.
type AttemptRecorder interface {
	CreateParticipation(ctx context.Context, email string, quizID int, score decimal.Decimal) (*model.Participation, error)
}

// QuizService handles the quiz catalog, authoring and attempt
// submission.
type QuizService struct {
	quizRepo          QuizRepository
	questionRepo      QuestionRepository
	userRepo          UserRepository
	professorRepo     ProfessorRepository
	participationRepo ParticipationRepository
	attempts          AttemptRecorder
	log               zerolog.Logger

	// randInt is swapped in tests to force code collisions.
	randInt func(n int) int
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo QuizRepository,
	questionRepo QuestionRepository,
	userRepo UserRepository,
	professorRepo ProfessorRepository,
	participationRepo ParticipationRepository,
	attempts AttemptRecorder,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:          quizRepo,
		questionRepo:      questionRepo,
		userRepo:          userRepo,
		professorRepo:     professorRepo,
		participationRepo: participationRepo,
		attempts:          attempts,
		log:               log,
		randInt:           rand.IntN,
	}
}

// DifficultyFor maps a question count to a difficulty label.
func DifficultyFor(questionCount int) string {
	switch {
	case questionCount <= 10:
		return "Facile"
	case questionCount <= 15:
		return "Moyen"
	default:
		return "Difficile"
	}
}

// ListPublicQuizzes returns the full quiz catalog, newest first, with
// question counts, professor names and derived difficulty.
func (s *QuizService) ListPublicQuizzes(ctx context.Context) ([]model.QuizSummary, error) {
	quizzes, err := s.quizRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return s.summarize(ctx, quizzes)
}

// summarize builds catalog projections with two batched lookups instead
// of one pair of queries per quiz.
func (s *QuizService) summarize(ctx context.Context, quizzes []model.Quiz) ([]model.QuizSummary, error) {
	counts, err := s.questionRepo.CountsByQuiz(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	names, err := s.professorRepo.NamesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("professor names: %w", err)
	}

	summaries := make([]model.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, model.QuizSummary{
			ID:              q.ID,
			Title:           q.Title,
			Description:     q.Description,
			Code:            q.Code,
			DurationMinutes: q.DurationMinutes,
			QuestionCount:   counts[q.ID],
			ProfessorName:   names[q.ProfessorID],
			Difficulty:      DifficultyFor(counts[q.ID]),
		})
	}
	return summaries, nil
}

// GetQuizByCode resolves a join code to a quiz summary.
func (s *QuizService) GetQuizByCode(ctx context.Context, code string) (*model.QuizSummary, error) {
	quiz, err := s.quizRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return s.summarizeOne(ctx, quiz)
}

// GetQuizByID returns the summary of one quiz.
func (s *QuizService) GetQuizByID(ctx context.Context, id int) (*model.QuizSummary, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return s.summarizeOne(ctx, quiz)
}

func (s *QuizService) summarizeOne(ctx context.Context, quiz *model.Quiz) (*model.QuizSummary, error) {
	count, err := s.questionRepo.CountByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	professorName := ""
	if prof, err := s.professorRepo.GetByID(ctx, quiz.ProfessorID); err == nil {
		professorName = prof.FullName()
	}

	return &model.QuizSummary{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		Code:            quiz.Code,
		DurationMinutes: quiz.DurationMinutes,
		QuestionCount:   count,
		ProfessorName:   professorName,
		Difficulty:      DifficultyFor(count),
	}, nil
}

// GetQuizQuestions returns the questions of a quiz with the correctness
// flags stripped, in authored order.
func (s *QuizService) GetQuizQuestions(ctx context.Context, quizID int) ([]model.QuestionForStudent, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	views, err := s.questionRepo.ListViewsByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]model.QuestionForStudent, 0, len(views))
	for _, v := range views {
		out = append(out, v.Sanitize())
	}
	return out, nil
}

// SubmitQuiz records a student's completed attempt. The score is a
// percentage and must sit in [0, 100].
func (s *QuizService) SubmitQuiz(ctx context.Context, email string, quizID int, req model.SubmitQuizRequest) (*model.Participation, error) {
	if req.Score.IsNegative() || req.Score.GreaterThan(hundred) {
		return nil, ErrScoreOutOfRange
	}
	return s.attempts.CreateParticipation(ctx, email, quizID, req.Score)
}

// GenerateUniqueCode draws random 6-character join codes until one is
// free, giving up after a bounded number of attempts.
func (s *QuizService) GenerateUniqueCode(ctx context.Context) (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < codeAttempts; attempt++ {
		for i := range buf {
			buf[i] = codeCharset[s.randInt(len(codeCharset))]
		}
		code := string(buf)

		taken, err := s.quizRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}

// CreateQuiz stores a new quiz with its questions under the calling
// professor, allocating a fresh join code.
func (s *QuizService) CreateQuiz(ctx context.Context, email string, req model.CreateQuizRequest) (*model.Quiz, error) {
	prof, err := s.professorByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	code, err := s.GenerateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Code:            code,
		DurationMinutes: req.DurationMinutes,
		ProfessorID:     prof.ID,
	}
	if err := s.quizRepo.CreateWithQuestions(ctx, quiz, req.Questions); err != nil {
		// The code was free moments ago; a concurrent insert can still
		// race us to it.
		if errors.Is(err, repository.ErrDuplicateQuizCode) {
			return nil, ErrCodesExhausted
		}
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info().Int("quiz_id", quiz.ID).Str("code", quiz.Code).Int("professor_id", prof.ID).Msg("quiz created")
	return quiz, nil
}

// ListProfessorQuizzes returns the calling professor's quizzes as
// catalog summaries.
func (s *QuizService) ListProfessorQuizzes(ctx context.Context, email string) ([]model.QuizSummary, error) {
	prof, err := s.professorByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.quizRepo.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return s.summarize(ctx, quizzes)
}

// GetQuizParticipations returns every attempt at one of the calling
// professor's quizzes.
func (s *QuizService) GetQuizParticipations(ctx context.Context, email string, quizID int) ([]model.Participation, error) {
	if err := s.requireOwnership(ctx, email, quizID); err != nil {
		return nil, err
	}

	parts, err := s.participationRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return parts, nil
}

// DeleteQuiz removes one of the calling professor's quizzes. Questions,
// responses and participations follow through the FK cascade.
func (s *QuizService) DeleteQuiz(ctx context.Context, email string, quizID int) error {
	if err := s.requireOwnership(ctx, email, quizID); err != nil {
		return err
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.log.Info().Int("quiz_id", quizID).Msg("quiz deleted")
	return nil
}

func (s *QuizService) requireOwnership(ctx context.Context, email string, quizID int) error {
	prof, err := s.professorByEmail(ctx, email)
	if err != nil {
		return err
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	if quiz.ProfessorID != prof.ID {
		return ErrNotQuizAuthor
	}
	return nil
}

// professorByEmail resolves the JWT subject to a professor profile.
func (s *QuizService) professorByEmail(ctx context.Context, email string) (*model.Professor, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfessorNotFound
		}
		return nil, err
	}
	prof, err := s.professorRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfessorNotFound
		}
		return nil, err
	}
	return prof, nil
}
