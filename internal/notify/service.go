package notify

import (
	"context"
	"fmt"

	"github.com/helptech/helptech-platform/pkg/logging"
)

// Service composes the notification emails the support flow produces:
// booking confirmations and human-handoff forwards. Failures are returned
// to the caller and never retried.
type Service struct {
	sender       EmailSender
	supportInbox string
	logger       *logging.Logger
}

// NewService wires a notification service around an email sender. The
// support inbox receives handoff forwards and captured leads.
func NewService(sender EmailSender, supportInbox string, logger *logging.Logger) *Service {
	if sender == nil {
		panic("notify: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, supportInbox: supportInbox, logger: logger}
}

// SendBookingConfirmation notifies the support inbox of a new booking.
func (s *Service) SendBookingConfirmation(ctx context.Context, service, date, time, details string) error {
	body := fmt.Sprintf(`Novo agendamento registrado pelo assistente virtual.

Serviço: %s
Data: %s
Horário: %s
Detalhes: %s
`, service, date, time, details)

	return s.sender.Send(ctx, EmailMessage{
		To:      s.supportInbox,
		ToName:  "HelpTech Suporte",
		Subject: "Novo agendamento - " + service,
		Body:    body,
	})
}

// ForwardTranscript forwards a conversation to a human agent with the
// customer's contact info.
func (s *Service) ForwardTranscript(ctx context.Context, name, email, transcript string) error {
	body := fmt.Sprintf(`Solicitação de atendimento humano.

Cliente: %s
Email: %s

Conversa:
%s
`, name, email, transcript)

	return s.sender.Send(ctx, EmailMessage{
		To:      s.supportInbox,
		ToName:  "HelpTech Suporte",
		Subject: "Atendimento HelpTech - Solicitação de Contato",
		Body:    body,
	})
}

// SendLeadNotification reports captured contact data to the support inbox.
func (s *Service) SendLeadNotification(ctx context.Context, name, email string) error {
	body := fmt.Sprintf(`Novo contato deixado pelo chat.

Nome: %s
Email: %s
`, name, email)

	return s.sender.Send(ctx, EmailMessage{
		To:      s.supportInbox,
		ToName:  "HelpTech Suporte",
		Subject: "Novo contato para retorno",
		Body:    body,
	})
}
