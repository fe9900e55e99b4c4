package dto

// EnforcementSummary - итог прохода enforcer'а по аккаунту, для аудит-лога
type EnforcementSummary struct {
	JobsPaused         int `json:"jobs_paused"`
	JobsResumed        int `json:"jobs_resumed"`
	TeamMembersPaused  int `json:"team_members_paused"`
	TeamMembersResumed int `json:"team_members_resumed"`
}

// IsNoop - проход ничего не изменил (ожидаемо для повторного запуска)
func (s *EnforcementSummary) IsNoop() bool {
	return s.JobsPaused == 0 && s.JobsResumed == 0 &&
		s.TeamMembersPaused == 0 && s.TeamMembersResumed == 0
}
