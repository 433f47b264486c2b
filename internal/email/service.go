package email

import (
	"fmt"
	"net/smtp"
)

// Service sends notification emails via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends the order confirmation email.
func (s *Service) SendOrderConfirmation(to string, o OrderSummary) error {
	shortID := o.OrderID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	subject := fmt.Sprintf("Lunch order confirmed for %s (ref %s)", o.Date, shortID)
	return s.send(to, subject, BuildOrderConfirmationBody(o))
}

// SendOrderCancelled sends the cancellation notice.
func (s *Service) SendOrderCancelled(to, orderID, date, reason string) error {
	subject := fmt.Sprintf("Lunch order for %s cancelled", date)
	return s.send(to, subject, BuildOrderCancelledBody(orderID, date, reason))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
