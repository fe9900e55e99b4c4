package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Имена встроенных шаблонов писем движка подписок
const (
	TemplateJobApproved          = "job_approved"
	TemplateJobRejected          = "job_rejected"
	TemplateLimitReached         = "limit_reached"
	TemplateSubscriptionExpiring = "subscription_expiring"
	TemplateTeamInvite           = "team_invite"
)

// TemplateManager реализует TemplateRenderer для управления шаблонами email
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с предзагруженными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range builtinTemplates {
		// Встроенные шаблоны статические, ошибка парсинга невозможна
		_ = tm.AddTemplate(name, body)
	}
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

var builtinTemplates = map[string]string{
	TemplateJobApproved: `<p>Hi {{.Name}},</p>
<p>Your job posting <b>{{.JobTitle}}</b> has been approved and is now visible to candidates.</p>`,

	TemplateJobRejected: `<p>Hi {{.Name}},</p>
<p>Your job posting <b>{{.JobTitle}}</b> was rejected.</p>
<p>Reason: {{.Reason}}</p>`,

	TemplateLimitReached: `<p>Hi {{.Name}},</p>
<p>You have reached the {{.Resource}} limit of your current plan.</p>
<p>Upgrade your subscription to continue growing your team and postings.</p>`,

	TemplateSubscriptionExpiring: `<p>Hi {{.Name}},</p>
<p>Your <b>{{.PlanName}}</b> subscription {{if .Expired}}has expired{{else}}expires in {{.DaysLeft}} days{{end}}.</p>
<p>Renew now to keep your job postings active.</p>`,

	TemplateTeamInvite: `<p>Hi {{.Name}},</p>
<p>{{.CompanyName}} invited you to join their hiring team as a {{.Role}}.</p>`,
}
