package handlers

import (
	"net/http"
	"time"

	"hirehub_backend/internal/auth"
	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services"
	"hirehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	*BaseHandler
	teamService services.TeamService
}

func NewTeamHandler(base *BaseHandler, teamService services.TeamService) *TeamHandler {
	return &TeamHandler{
		BaseHandler: base,
		teamService: teamService,
	}
}

func (h *TeamHandler) RegisterRoutes(r *gin.RouterGroup) {
	team := r.Group("/team")
	team.Use(middleware.AuthMiddleware())
	{
		team.GET("", h.ListTeam)
		team.PUT("/:memberId/accept", h.AcceptInvite)

		canManage := middleware.RequirePermission(func(p auth.Permissions) bool { return p.CanManageTeam })
		team.POST("", canManage, h.AddTeamMember)
		team.DELETE("/:memberId", canManage, h.RemoveTeamMember)
	}
}

func (h *TeamHandler) AddTeamMember(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.AddTeamMemberRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	req.AccountID = accountID

	member, err := h.teamService.AddTeamMember(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTeamMemberResponse(member))
}

func (h *TeamHandler) AcceptInvite(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	if err := h.teamService.AcceptInvite(accountID, c.Param("memberId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

func (h *TeamHandler) RemoveTeamMember(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	if err := h.teamService.RemoveTeamMember(accountID, c.Param("memberId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team member removed"})
}

func (h *TeamHandler) ListTeam(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	members, err := h.teamService.ListTeam(accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := make([]*dto.TeamMemberResponse, 0, len(members))
	for i := range members {
		resp = append(resp, toTeamMemberResponse(&members[i]))
	}
	c.JSON(http.StatusOK, gin.H{"members": resp, "total": len(resp)})
}

func toTeamMemberResponse(member *models.TeamMember) *dto.TeamMemberResponse {
	return &dto.TeamMemberResponse{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Role:      member.Role,
		Status:    member.Status,
		CreatedAt: member.CreatedAt.Format(time.RFC3339),
	}
}
