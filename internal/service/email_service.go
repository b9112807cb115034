package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/config"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailService 负责发送通知邮件，发送失败不影响主流程
type EmailService struct {
	smtpHost string
	smtpPort int
	username string
	password string
}

func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost: config.AppConfig.SMTPHost,
		smtpPort: config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUsername,
		password: config.AppConfig.SMTPPassword,
	}
}

// SendWelcomeEmail 注册成功后发送欢迎邮件
func (s *EmailService) SendWelcomeEmail(email, username string) error {
	subject := "欢迎使用文件管理服务"
	body := fmt.Sprintf("亲爱的 %s，\n\n您的账户已创建成功，现在可以登录并上传文件了。\n\n%s",
		username, config.AppConfig.FrontendURL)

	s.sendEmailAsync(email, subject, body)
	return nil
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	if s.username == "" || s.password == "" {
		util.Logger.Warn("SMTP 未配置，跳过发送邮件", zap.String("to", to))
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
