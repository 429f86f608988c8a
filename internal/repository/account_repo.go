package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exambel/exambel-api/internal/models"
)

// ErrStatusConflict reports that the stored status no longer matches the one
// the caller read, so the transition was not applied.
var ErrStatusConflict = errors.New("account status changed concurrently")

// AccountFilter narrows account listing queries.
type AccountFilter struct {
	Role   models.Role
	Status models.Status
	Search string
	Limit  int
}

// CascadeCounts reports how many dependent rows a teacher delete removed.
type CascadeCounts struct {
	Classes  int64
	Students int64
	Exams    int64
}

// AccountRepository persists accounts and owns the two multi-row invariants:
// single-admin bootstrap and the teacher delete cascade.
type AccountRepository interface {
	// CreateWithRoleAssignment claims the singleton admin grant and writes the
	// account in one transaction. The first registrant to win the conditional
	// insert becomes admin/approved; everyone else becomes teacher/pending.
	CreateWithRoleAssignment(ctx context.Context, account *models.Account) (admin bool, err error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]models.Account, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	// UpdateStatus moves the account status, conditional on the stored value
	// still matching from. A lost race returns ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, from, to models.Status) error
	// DeleteTeacherCascade removes the account together with every class,
	// student and exam it owns in a single transaction. Dependents go first so
	// no intermediate state shows the account gone with dependents remaining.
	DeleteTeacherCascade(ctx context.Context, teacherID string) (CascadeCounts, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository constructs the account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateWithRoleAssignment(ctx context.Context, account *models.Account) (bool, error) {
	admin := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant := models.AdminGrant{Slot: 1, AccountID: account.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
		if res.Error != nil {
			return res.Error
		}

		admin = res.RowsAffected == 1
		if admin {
			account.Role = models.RoleAdmin
			account.Status = models.StatusApproved
		} else {
			account.Role = models.RoleTeacher
			account.Status = models.StatusPending
		}

		return tx.Create(account).Error
	})
	return admin, err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]models.Account, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var accounts []models.Account
	if err := query.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", role).Count(&total).Error
	return total, err
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id string, from, to models.Status) error {
	update := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		// Distinguish a vanished account from a concurrent status change.
		var total int64
		if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *accountRepository) DeleteTeacherCascade(ctx context.Context, teacherID string) (CascadeCounts, error) {
	var counts CascadeCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("teacher_id = ?", teacherID).Delete(&models.Student{})
		if res.Error != nil {
			return res.Error
		}
		counts.Students = res.RowsAffected

		res = tx.Where("teacher_id = ?", teacherID).Delete(&models.Exam{})
		if res.Error != nil {
			return res.Error
		}
		counts.Exams = res.RowsAffected

		res = tx.Where("teacher_id = ?", teacherID).Delete(&models.Class{})
		if res.Error != nil {
			return res.Error
		}
		counts.Classes = res.RowsAffected

		if err := tx.Where("account_id = ?", teacherID).Delete(&models.AdminGrant{}).Error; err != nil {
			return err
		}

		// Account row last, once every dependent is confirmed gone.
		res = tx.Where("id = ?", teacherID).Delete(&models.Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return CascadeCounts{}, err
	}
	return counts, nil
}
