package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// In-memory repository fakes backing the service tests. They apply the
// same uniqueness rules as the SQL schema so the services see the same
// sentinel errors.

type fakeUserRepo struct {
	seq   int
	users map[int]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*model.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByVerificationToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range f.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByPasswordResetToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range f.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id int) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	u.Enabled = true
	u.VerificationToken = nil
	u.VerificationTokenExpiry = nil
	return nil
}

func (f *fakeUserRepo) SetVerificationToken(_ context.Context, id int, token string, expiry time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.VerificationToken = &token
	u.VerificationTokenExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) SetRefreshToken(_ context.Context, id int, token *string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) SetPasswordResetToken(_ context.Context, id int, token string, expiry time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetTokenExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) ResetPassword(_ context.Context, id int, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordResetToken = nil
	u.PasswordResetTokenExpiry = nil
	u.RefreshToken = nil
	return nil
}

type fakeStudentRepo struct {
	seq      int
	students map[int]*model.Student
	users    *fakeUserRepo
}

func newFakeStudentRepo(users *fakeUserRepo) *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[int]*model.Student), users: users}
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentRepo) GetByUserID(_ context.Context, userID int) (*model.Student, error) {
	for _, s := range f.students {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStudentRepo) Create(_ context.Context, s *model.Student) error {
	f.seq++
	s.ID = f.seq
	s.CreatedAt = time.Now()
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) UpdateNames(_ context.Context, id int, firstName, lastName string) error {
	s, ok := f.students[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.FirstName = firstName
	s.LastName = lastName
	return nil
}

func (f *fakeStudentRepo) ListWithUsers(_ context.Context) ([]repository.StudentWithUser, error) {
	out := make([]repository.StudentWithUser, 0, len(f.students))
	for _, s := range f.students {
		entry := repository.StudentWithUser{Student: *s}
		if u, ok := f.users.users[s.UserID]; ok {
			entry.Username = u.Username
			entry.Email = u.Email
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProfessorRepo struct {
	seq        int
	professors map[int]*model.Professor
}

func newFakeProfessorRepo() *fakeProfessorRepo {
	return &fakeProfessorRepo{professors: make(map[int]*model.Professor)}
}

func (f *fakeProfessorRepo) GetByID(_ context.Context, id int) (*model.Professor, error) {
	p, ok := f.professors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfessorRepo) GetByUserID(_ context.Context, userID int) (*model.Professor, error) {
	for _, p := range f.professors {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfessorRepo) Create(_ context.Context, p *model.Professor) error {
	f.seq++
	p.ID = f.seq
	p.CreatedAt = time.Now()
	cp := *p
	f.professors[p.ID] = &cp
	return nil
}

func (f *fakeProfessorRepo) NamesByID(_ context.Context) (map[int]string, error) {
	out := make(map[int]string, len(f.professors))
	for id, p := range f.professors {
		out[id] = p.FullName()
	}
	return out, nil
}

type fakeQuizRepo struct {
	seq       int
	quizzes   map[int]*model.Quiz
	questions *fakeQuestionRepo
}

func newFakeQuizRepo(questions *fakeQuestionRepo) *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[int]*model.Quiz), questions: questions}
}

func (f *fakeQuizRepo) GetByID(_ context.Context, id int) (*model.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuizRepo) GetByCode(_ context.Context, code string) (*model.Quiz, error) {
	for _, q := range f.quizzes {
		if q.Code == code {
			cp := *q
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuizRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, q := range f.quizzes {
		if q.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeQuizRepo) ListAll(_ context.Context) ([]model.Quiz, error) {
	out := make([]model.Quiz, 0, len(f.quizzes))
	for _, q := range f.quizzes {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeQuizRepo) ListByProfessor(_ context.Context, professorID int) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range f.quizzes {
		if q.ProfessorID == professorID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeQuizRepo) CreateWithQuestions(_ context.Context, q *model.Quiz, questions []model.CreateQuestionRequest) error {
	for _, existing := range f.quizzes {
		if existing.Code == q.Code {
			return repository.ErrDuplicateQuizCode
		}
	}
	f.seq++
	q.ID = f.seq
	q.CreatedAt = time.Now()
	cp := *q
	f.quizzes[q.ID] = &cp

	if f.questions != nil {
		for _, qr := range questions {
			view := model.QuestionView{
				ID:           f.questions.nextID(),
				QuestionText: qr.QuestionText,
			}
			for _, rr := range qr.Responses {
				view.Responses = append(view.Responses, model.Response{
					ID:           f.questions.nextID(),
					QuestionID:   view.ID,
					ResponseText: rr.ResponseText,
					IsCorrect:    rr.IsCorrect,
				})
			}
			f.questions.byQuiz[q.ID] = append(f.questions.byQuiz[q.ID], view)
		}
	}
	return nil
}

func (f *fakeQuizRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.quizzes, id)
	if f.questions != nil {
		delete(f.questions.byQuiz, id)
	}
	return nil
}

type fakeQuestionRepo struct {
	seq    int
	byQuiz map[int][]model.QuestionView
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byQuiz: make(map[int][]model.QuestionView)}
}

func (f *fakeQuestionRepo) nextID() int {
	f.seq++
	return f.seq
}

func (f *fakeQuestionRepo) setCount(quizID, count int) {
	views := make([]model.QuestionView, count)
	for i := range views {
		views[i] = model.QuestionView{ID: f.nextID(), QuestionText: "q"}
	}
	f.byQuiz[quizID] = views
}

func (f *fakeQuestionRepo) ListViewsByQuiz(_ context.Context, quizID int) ([]model.QuestionView, error) {
	return f.byQuiz[quizID], nil
}

func (f *fakeQuestionRepo) CountByQuiz(_ context.Context, quizID int) (int, error) {
	return len(f.byQuiz[quizID]), nil
}

func (f *fakeQuestionRepo) CountsByQuiz(_ context.Context) (map[int]int, error) {
	out := make(map[int]int, len(f.byQuiz))
	for id, views := range f.byQuiz {
		out[id] = len(views)
	}
	return out, nil
}

type fakeParticipationRepo struct {
	seq            int
	participations map[int]*model.Participation
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{participations: make(map[int]*model.Participation)}
}

func (f *fakeParticipationRepo) GetByID(_ context.Context, id int) (*model.Participation, error) {
	p, ok := f.participations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeParticipationRepo) ListByUser(_ context.Context, userID int) ([]model.Participation, error) {
	var out []model.Participation
	for _, p := range f.participations {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeParticipationRepo) ListByQuiz(_ context.Context, quizID int) ([]model.Participation, error) {
	var out []model.Participation
	for _, p := range f.participations {
		if p.QuizID == quizID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeParticipationRepo) ListAll(_ context.Context) ([]model.Participation, error) {
	out := make([]model.Participation, 0, len(f.participations))
	for _, p := range f.participations {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeParticipationRepo) ExistsByUserAndQuiz(_ context.Context, userID, quizID int) (bool, error) {
	for _, p := range f.participations {
		if p.UserID == userID && p.QuizID == quizID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeParticipationRepo) Create(_ context.Context, p *model.Participation) error {
	for _, existing := range f.participations {
		if existing.UserID == p.UserID && existing.QuizID == p.QuizID {
			return repository.ErrDuplicateAttempt
		}
	}
	f.seq++
	p.ID = f.seq
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	f.participations[p.ID] = &cp
	return nil
}

// insert bypasses the uniqueness rule so history fixtures can set the
// completion time directly.
func (f *fakeParticipationRepo) insert(userID, quizID int, score string, at time.Time) {
	f.seq++
	f.participations[f.seq] = &model.Participation{
		ID:        f.seq,
		QuizID:    quizID,
		UserID:    userID,
		Score:     mustDecimal(score),
		CreatedAt: at,
	}
}

type fakeMailer struct {
	verifications int
	resets        int
	lastToken     string
	failNext      bool
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, _, _, token string) error {
	if f.failNext {
		f.failNext = false
		return context.DeadlineExceeded
	}
	f.verifications++
	f.lastToken = token
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, _, _, token string) error {
	if f.failNext {
		f.failNext = false
		return context.DeadlineExceeded
	}
	f.resets++
	f.lastToken = token
	return nil
}
