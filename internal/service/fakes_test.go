package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/identity"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAccountRepo struct {
	mu              sync.Mutex
	accounts        map[string]models.Account
	grantClaimed    bool
	cascades        repository.CascadeCounts
	updateStatusErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]models.Account{}}
}

func (f *fakeAccountRepo) CreateWithRoleAssignment(_ context.Context, account *models.Account) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	admin := !f.grantClaimed
	if admin {
		f.grantClaimed = true
		account.Role = models.RoleAdmin
		account.Status = models.StatusApproved
	} else {
		account.Role = models.RoleTeacher
		account.Status = models.StatusPending
	}
	f.accounts[account.ID] = *account
	return admin, nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (f *fakeAccountRepo) List(_ context.Context, filter repository.AccountFilter) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Account
	for _, account := range f.accounts {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		if filter.Status != "" && account.Status != filter.Status {
			continue
		}
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAccountRepo) CountByRole(_ context.Context, role models.Role) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var total int64
	for _, account := range f.accounts {
		if account.Role == role {
			total++
		}
	}
	return total, nil
}

func (f *fakeAccountRepo) UpdateStatus(_ context.Context, id string, from, to models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	account, ok := f.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if account.Status != from {
		return repository.ErrStatusConflict
	}
	account.Status = to
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountRepo) DeleteTeacherCascade(_ context.Context, teacherID string) (repository.CascadeCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[teacherID]; !ok {
		return repository.CascadeCounts{}, gorm.ErrRecordNotFound
	}
	delete(f.accounts, teacherID)
	return f.cascades, nil
}

func (f *fakeAccountRepo) seed(account models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = account
}

type fakeClassRepo struct {
	mu       sync.Mutex
	classes  map[string]models.Class
	students int64
	exams    int64
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{classes: map[string]models.Class{}}
}

func (f *fakeClassRepo) Create(_ context.Context, class *models.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) GetByID(_ context.Context, id string) (models.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	class, ok := f.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) ListByTeacher(_ context.Context, teacherID string) ([]models.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Class
	for _, class := range f.classes {
		if class.TeacherID == teacherID {
			out = append(out, class)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeClassRepo) DeleteCascade(_ context.Context, classID string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.classes[classID]; !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	delete(f.classes, classID)
	return f.students, f.exams, nil
}

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]models.Student{}}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) ListByClass(_ context.Context, classID string) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Student
	for _, student := range f.students {
		if student.ClassID == classID {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudentRepo) ListByTeacher(_ context.Context, teacherID string) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Student
	for _, student := range f.students {
		if student.TeacherID == teacherID {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) CodeExists(_ context.Context, teacherID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, student := range f.students {
		if student.TeacherID == teacherID && student.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.students)), nil
}

type fakeExamRepo struct {
	mu        sync.Mutex
	exams     map[string]models.Exam
	codeTaken bool
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{exams: map[string]models.Exam{}}
}

func (f *fakeExamRepo) Create(_ context.Context, exam *models.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamRepo) GetByID(_ context.Context, id string) (models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	exam, ok := f.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (f *fakeExamRepo) GetByCode(_ context.Context, code string) (models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, exam := range f.exams {
		if exam.ExamCode == code {
			return exam, nil
		}
	}
	return models.Exam{}, gorm.ErrRecordNotFound
}

func (f *fakeExamRepo) ListByTeacher(_ context.Context, teacherID string) ([]models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Exam
	for _, exam := range f.exams {
		if exam.TeacherID == teacherID {
			out = append(out, exam)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeExamRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.exams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.exams, id)
	return nil
}

func (f *fakeExamRepo) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.codeTaken {
		return true, nil
	}
	for _, exam := range f.exams {
		if exam.ExamCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExamRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.exams)), nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	failErr error
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return f.failErr
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.ActivityLog, len(f.entries))
	copy(out, f.entries)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeIdentityStore struct {
	mu          sync.Mutex
	credentials map[string]struct {
		id       string
		password string
	}
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{credentials: map[string]struct {
		id       string
		password string
	}{}}
}

func (f *fakeIdentityStore) Register(_ context.Context, email, password string) (identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.credentials[email]; ok {
		return identity.Identity{}, identity.ErrEmailTaken
	}
	id := uuid.NewString()
	f.credentials[email] = struct {
		id       string
		password string
	}{id: id, password: password}
	return identity.Identity{ID: id, Email: email}, nil
}

func (f *fakeIdentityStore) Authenticate(_ context.Context, email, password string) (identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cred, ok := f.credentials[email]
	if !ok || cred.password != password {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	return identity.Identity{ID: cred.id, Email: email}, nil
}

type recorderSpy struct {
	mu      sync.Mutex
	actions []string
	details []map[string]interface{}
}

func (r *recorderSpy) Record(_ context.Context, action string, details map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	r.details = append(r.details, details)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *capturePublisher) Publish(_ context.Context, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) collections() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Collection)
	}
	return out
}
