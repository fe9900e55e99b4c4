package dto

import "hirehub_backend/internal/models"

type AddTeamMemberRequest struct {
	AccountID string `json:"-"`

	Name  string `json:"name" binding:"required" validate:"required,min=2,max=100"`
	Email string `json:"email" binding:"required" validate:"required,email"`
	Role  string `json:"role" binding:"required" validate:"required,is-team-role"`
}

type TeamMemberResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Role      models.TeamMemberRole   `json:"role"`
	Status    models.TeamMemberStatus `json:"status"`
	CreatedAt string                  `json:"created_at"`
}
