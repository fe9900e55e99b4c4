package repositories

import (
	"errors"
	"fmt"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUnknownUsageField    = errors.New("unknown usage field")
)

// Белый список колонок снапшота. Имя колонки подставляется в SQL,
// поэтому оно никогда не берется из пользовательского ввода
var usageColumns = map[models.UsageField]string{
	models.UsageJobsPosted:        "jobs_posted",
	models.UsageActiveJobs:        "active_jobs",
	models.UsageTotalApplications: "total_applications",
	models.UsageTeamMembers:       "team_members_added",
	models.UsageManagers:          "managers_added",
}

type SubscriptionRepository interface {
	Create(sub *models.CompanySubscription) error
	FindByID(id string) (*models.CompanySubscription, error)
	// FindActiveByAccount возвращает ErrSubscriptionNotFound и для истекшего окна:
	// истекшая подписка не должна молча выдавать квоты старого плана
	FindActiveByAccount(accountID string) (*models.CompanySubscription, error)
	// Supersede отменяет текущую активную подписку и создает новую в одной транзакции
	Supersede(accountID string, newSub *models.CompanySubscription) error
	Cancel(accountID string) error
	MarkExpired(id string) error

	// TryIncrementUsage - атомарный условный инкремент счетчика.
	// Возвращает false, если инкремент превысил бы лимит (проигранная гонка квоты)
	TryIncrementUsage(id string, field models.UsageField, delta, limit int) (bool, error)
	// DecrementUsage - безусловный декремент с отсечкой в ноле.
	// Удаление сущностей никогда не падает из-за квот
	DecrementUsage(id string, field models.UsageField, delta int) error
	// SyncUsage перезаписывает снапшот целиком значениями из ground truth
	SyncUsage(id string, snapshot models.UsageSnapshot) error

	FindExpired() ([]models.CompanySubscription, error)
	FindExpiring(days int) ([]models.CompanySubscription, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) Create(sub *models.CompanySubscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) FindByID(id string) (*models.CompanySubscription, error) {
	var sub models.CompanySubscription
	err := r.db.Preload("Plan").First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindActiveByAccount(accountID string) (*models.CompanySubscription, error) {
	var sub models.CompanySubscription
	err := r.db.Preload("Plan").
		Where("account_id = ? AND status = ? AND end_date > ?",
			accountID, models.SubscriptionStatusActive, time.Now()).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Supersede(accountID string, newSub *models.CompanySubscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Старая активная подписка помечается отмененной, чтобы
		// выполнялся инвариант "не более одной active на аккаунт"
		err := tx.Model(&models.CompanySubscription{}).
			Where("account_id = ? AND status = ?", accountID, models.SubscriptionStatusActive).
			Updates(map[string]interface{}{
				"status":       models.SubscriptionStatusCancelled,
				"cancelled_at": time.Now(),
				"updated_at":   time.Now(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Create(newSub).Error
	})
}

func (r *SubscriptionRepositoryImpl) Cancel(accountID string) error {
	result := r.db.Model(&models.CompanySubscription{}).
		Where("account_id = ? AND status = ?", accountID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"cancelled_at": time.Now(),
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) MarkExpired(id string) error {
	result := r.db.Model(&models.CompanySubscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusExpired,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// TryIncrementUsage выражает "act conditionally" вместо "check-then-act":
// read-modify-write выполняет СУБД одним UPDATE, а не приложение
// двумя round-trip'ами. limit < 0 означает безлимитную квоту
func (r *SubscriptionRepositoryImpl) TryIncrementUsage(id string, field models.UsageField, delta, limit int) (bool, error) {
	column, ok := usageColumns[field]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownUsageField, field)
	}

	result := r.db.Model(&models.CompanySubscription{}).
		Where("id = ?", id).
		Where(fmt.Sprintf("? < 0 OR %s + ? <= ?", column), limit, delta, limit).
		Updates(map[string]interface{}{
			column:       gorm.Expr(fmt.Sprintf("%s + ?", column), delta),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubscriptionRepositoryImpl) DecrementUsage(id string, field models.UsageField, delta int) error {
	column, ok := usageColumns[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUsageField, field)
	}

	// Декремент с отсечкой: счетчик не уходит ниже нуля
	result := r.db.Model(&models.CompanySubscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column: gorm.Expr(
				fmt.Sprintf("CASE WHEN %s >= ? THEN %s - ? ELSE 0 END", column, column),
				delta, delta,
			),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) SyncUsage(id string, snapshot models.UsageSnapshot) error {
	result := r.db.Model(&models.CompanySubscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"jobs_posted":        snapshot.JobsPosted,
			"active_jobs":        snapshot.ActiveJobs,
			"total_applications": snapshot.TotalApplications,
			"team_members_added": snapshot.TeamMembersAdded,
			"managers_added":     snapshot.ManagersAdded,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) FindExpired() ([]models.CompanySubscription, error) {
	var subs []models.CompanySubscription
	err := r.db.Preload("Plan").
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, time.Now()).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) FindExpiring(days int) ([]models.CompanySubscription, error) {
	var subs []models.CompanySubscription
	expiryDate := time.Now().AddDate(0, 0, days)

	err := r.db.Preload("Plan").
		Where("status = ? AND end_date <= ? AND end_date > ?",
			models.SubscriptionStatusActive, expiryDate, time.Now()).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}
