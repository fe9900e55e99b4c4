package repositories

import (
	"errors"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment transaction not found")
)

type PaymentRepository interface {
	Create(payment *models.PaymentTransaction) error
	FindByID(id string) (*models.PaymentTransaction, error)
	FindByInvID(invID string) (*models.PaymentTransaction, error)
	FindByAccount(accountID string) ([]models.PaymentTransaction, error)
	UpdateStatus(invID string, status models.PaymentStatus, paidAt *time.Time) error
	LinkSubscription(invID, subscriptionID string) error
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(payment *models.PaymentTransaction) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByID(id string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.Preload("Plan").First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByInvID(invID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.Preload("Plan").Where("inv_id = ?", invID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByAccount(accountID string) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := r.db.Preload("Plan").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) UpdateStatus(invID string, status models.PaymentStatus, paidAt *time.Time) error {
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("inv_id = ?", invID).
		Updates(map[string]interface{}{
			"status":     status,
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) LinkSubscription(invID, subscriptionID string) error {
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("inv_id = ?", invID).
		Updates(map[string]interface{}{
			"subscription_id": subscriptionID,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
