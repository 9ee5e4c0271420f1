package mail

import (
	"log"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers plain-text mail over SMTP. It satisfies the service
// Mailer interface.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Sender:   sender,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)

	if err := d.DialAndSend(msg); err != nil {
		log.Printf("ERROR: Failed to send email to %s: %v", to, err)
		return err
	}

	return nil
}
