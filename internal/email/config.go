package email

import "time"

// SMTPConfig - параметры SMTP-транспорта исходящих уведомлений
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// DefaultConfig задает транспортный уровень: порт submission, TLS и
// таймаут отправки. Хост и учетные данные приходят из конфигурации приложения
func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Port:    587,
		UseTLS:  true,
		Timeout: 30 * time.Second,
	}
}
