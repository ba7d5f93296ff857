package mail

import "gopkg.in/gomail.v2"

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(m Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (s *SMTPSender) Send(m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	if m.HTML != "" {
		msg.SetBody("text/html", m.HTML)
		if m.Text != "" {
			msg.AddAlternative("text/plain", m.Text)
		}
	} else {
		msg.SetBody("text/plain", m.Text)
	}
	return s.dialer.DialAndSend(msg)
}
