package repositories

import (
	"errors"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTeamMemberNotFound = errors.New("team member not found")
)

type TeamMemberRepository interface {
	Create(member *models.TeamMember) error
	// Delete - жесткое удаление, вызывающий обязан декрементировать счетчик
	Delete(id string) error
	FindByID(id string) (*models.TeamMember, error)
	// FindByAccountRoleOrdered - по created_at ASC, детерминированный порядок
	// обхода enforcer'а по времени приглашения
	FindByAccountRoleOrdered(accountID string, role models.TeamMemberRole) ([]models.TeamMember, error)
	SetStatus(id string, status models.TeamMemberStatus, pausedBy models.PausedBy) error
	CountByAccountRole(accountID string, role models.TeamMemberRole) (int64, error)
}

type TeamMemberRepositoryImpl struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &TeamMemberRepositoryImpl{db: db}
}

func (r *TeamMemberRepositoryImpl) Create(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

func (r *TeamMemberRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func (r *TeamMemberRepositoryImpl) FindByID(id string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.First(&member, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *TeamMemberRepositoryImpl) FindByAccountRoleOrdered(accountID string, role models.TeamMemberRole) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Where("account_id = ? AND role = ?", accountID, role).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *TeamMemberRepositoryImpl) SetStatus(id string, status models.TeamMemberStatus, pausedBy models.PausedBy) error {
	result := r.db.Model(&models.TeamMember{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"paused_by":  pausedBy,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func (r *TeamMemberRepositoryImpl) CountByAccountRole(accountID string, role models.TeamMemberRole) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("account_id = ? AND role = ?", accountID, role).
		Count(&count).Error
	return count, err
}
