package repositories

import (
	"errors"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Create(job *models.Job) error
	// Delete выполняет компенсирующее удаление только что созданной вакансии
	// при проигранной гонке коммита квоты. Обычный жизненный цикл
	// вакансии не удаляет, а закрывает
	Delete(id string) error
	FindByID(id string) (*models.Job, error)
	// FindByAccountOrdered возвращает вакансии аккаунта по created_at ASC -
	// детерминированный порядок обхода enforcer'а: самые ранние
	// вакансии имеют приоритет остаться активными при даунгрейде
	FindByAccountOrdered(accountID string) ([]models.Job, error)
	// UpdateIfPending записывает решение модерации одной условной записью:
	// guard по approval_status закрывает гонку двух конкурентных решений.
	// false - вакансия уже не на модерации
	UpdateIfPending(job *models.Job) (bool, error)
	// SetRuntimeState меняет runtime-статус, провенанс паузы и видимость одной записью
	SetRuntimeState(id string, status models.JobStatus, pausedBy models.PausedBy, visible bool) error
	CountByAccount(accountID string) (int64, error)
	CountByAccountStatus(accountID string, status models.JobStatus) (int64, error)
	SumApplications(accountID string) (int64, error)
	// TryIncrementApplications - условный инкремент счетчика откликов вакансии,
	// та же защита от гонок, что и у счетчиков подписки
	TryIncrementApplications(id string, limit int) (bool, error)
	// FindExpired возвращает вакансии с истекшим сроком размещения, еще не
	// финализированные. Паузы входят в выборку: окно размещения может
	// истечь, пока вакансия стоит на паузе
	FindExpired(now time.Time) ([]models.Job, error)
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) FindByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindByAccountOrdered(accountID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) UpdateIfPending(job *models.Job) (bool, error) {
	result := r.db.Model(&models.Job{}).
		Where("id = ? AND approval_status = ?", job.ID, models.JobApprovalPending).
		Updates(map[string]interface{}{
			"approval_status":  job.ApprovalStatus,
			"status":           job.Status,
			"visibility":       job.Visibility,
			"paused_by":        job.PausedBy,
			"approved_by":      job.ApprovedBy,
			"approved_at":      job.ApprovedAt,
			"rejection_reason": job.RejectionReason,
			"expires_at":       job.ExpiresAt,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *JobRepositoryImpl) SetRuntimeState(id string, status models.JobStatus, pausedBy models.PausedBy, visible bool) error {
	result := r.db.Model(&models.Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"paused_by":  pausedBy,
		"visibility": visible,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) CountByAccount(accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Job{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

func (r *JobRepositoryImpl) CountByAccountStatus(accountID string, status models.JobStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Job{}).
		Where("account_id = ? AND status = ?", accountID, status).
		Count(&count).Error
	return count, err
}

func (r *JobRepositoryImpl) SumApplications(accountID string) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Job{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(application_count), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *JobRepositoryImpl) TryIncrementApplications(id string, limit int) (bool, error) {
	result := r.db.Model(&models.Job{}).
		Where("id = ?", id).
		Where("? < 0 OR application_count + 1 <= ?", limit, limit).
		Updates(map[string]interface{}{
			"application_count": gorm.Expr("application_count + 1"),
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *JobRepositoryImpl) FindExpired(now time.Time) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
		[]models.JobStatus{models.JobStatusActive, models.JobStatusPaused}, now).
		Find(&jobs).Error
	return jobs, err
}
