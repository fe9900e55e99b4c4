package models

// User - учетная запись владельца аккаунта компании.
// Разрешение identity -> account выполняется auth-сервисом,
// движок квот доверяет выданным им claims
type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	CompanyName  string     `gorm:"not null"`
	Role         UserRole   `gorm:"default:'company'"`
	Status       UserStatus `gorm:"default:'active'"`
	IsVerified   bool       `gorm:"default:false"`
}
