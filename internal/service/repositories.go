package service

import (
	"context"
	"time"

	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

// The services consume narrow repository interfaces instead of the
// concrete pgx types so the business rules can be tested against
// in-memory fakes. The structs in internal/repository satisfy them.
// Lookup methods return repository.ErrNotFound on a miss.

// UserRepository is the account storage the services need.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	GetByPasswordResetToken(ctx context.Context, token string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int) error
	MarkVerified(ctx context.Context, id int) error
	SetVerificationToken(ctx context.Context, id int, token string, expiry time.Time) error
	SetRefreshToken(ctx context.Context, id int, token *string) error
	SetPasswordResetToken(ctx context.Context, id int, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, id int, passwordHash string) error
}

// StudentRepository is the student profile storage the services need.
type StudentRepository interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	GetByUserID(ctx context.Context, userID int) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	UpdateNames(ctx context.Context, id int, firstName, lastName string) error
	ListWithUsers(ctx context.Context) ([]repository.StudentWithUser, error)
}

// ProfessorRepository is the professor profile storage the services need.
type ProfessorRepository interface {
	GetByID(ctx context.Context, id int) (*model.Professor, error)
	GetByUserID(ctx context.Context, userID int) (*model.Professor, error)
	Create(ctx context.Context, p *model.Professor) error
	NamesByID(ctx context.Context) (map[int]string, error)
}

// QuizRepository is the quiz storage the services need.
type QuizRepository interface {
	GetByID(ctx context.Context, id int) (*model.Quiz, error)
	GetByCode(ctx context.Context, code string) (*model.Quiz, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ListAll(ctx context.Context) ([]model.Quiz, error)
	ListByProfessor(ctx context.Context, professorID int) ([]model.Quiz, error)
	CreateWithQuestions(ctx context.Context, q *model.Quiz, questions []model.CreateQuestionRequest) error
	Delete(ctx context.Context, id int) error
}

// QuestionRepository is the question storage the services need.
type QuestionRepository interface {
	ListViewsByQuiz(ctx context.Context, quizID int) ([]model.QuestionView, error)
	CountByQuiz(ctx context.Context, quizID int) (int, error)
	CountsByQuiz(ctx context.Context) (map[int]int, error)
}

// ParticipationRepository is the participation storage the services need.
type ParticipationRepository interface {
	GetByID(ctx context.Context, id int) (*model.Participation, error)
	ListByUser(ctx context.Context, userID int) ([]model.Participation, error)
	ListByQuiz(ctx context.Context, quizID int) ([]model.Participation, error)
	ListAll(ctx context.Context) ([]model.Participation, error)
	ExistsByUserAndQuiz(ctx context.Context, userID, quizID int) (bool, error)
	Create(ctx context.Context, p *model.Participation) error
}

// Mailer delivers transactional email. internal/mailer implements it
// against the Brevo HTTP API.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, username, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error
}
