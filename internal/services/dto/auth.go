package dto

type RegisterRequest struct {
	Email       string `json:"email" binding:"required" validate:"required,email"`
	Password    string `json:"password" binding:"required" validate:"required,min=8"`
	CompanyName string `json:"company_name" binding:"required" validate:"required,min=2,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type AuthResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	AccountID   string `json:"account_id"`
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
}
