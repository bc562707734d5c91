package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/helptech/helptech-platform/internal/llm"
	"github.com/helptech/helptech-platform/internal/observability/metrics"
	"github.com/helptech/helptech-platform/internal/store"
	"github.com/helptech/helptech-platform/pkg/logging"
)

// Mode selects how freeform input is answered.
type Mode string

const (
	// ModeScripted routes every turn through the deterministic dialog engine.
	ModeScripted Mode = "scripted"
	// ModeSmart routes freeform turns to the generative provider, with
	// dedicated branches for handoff and appointment intent.
	ModeSmart Mode = "smart"
)

// ErrUnknownSession is returned for operations on sessions never started.
var ErrUnknownSession = errors.New("chat: unknown session")

// ErrSessionExists is returned when starting an already-active session.
var ErrSessionExists = errors.New("chat: session already exists")

// DelayFunc computes the simulated typing delay for a reply.
type DelayFunc func(reply string) time.Duration

// TypingDelay paces replies at 10ms per character, clamped to [700ms, 1s].
func TypingDelay(reply string) time.Duration {
	d := time.Duration(len([]rune(reply))) * 10 * time.Millisecond
	if d < 700*time.Millisecond {
		return 700 * time.Millisecond
	}
	if d > time.Second {
		return time.Second
	}
	return d
}

// NoDelay disables the simulated typing delay. Used in tests and workers.
func NoDelay(string) time.Duration { return 0 }

// Notifier is the email collaborator consumed by the orchestrator.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, service, date, time, details string) error
	ForwardTranscript(ctx context.Context, name, email, transcript string) error
	SendLeadNotification(ctx context.Context, name, email string) error
}

const defaultDedupeWindow = 2 * time.Second

// session is one live conversation. Its mutex serializes turn processing so
// at most one reply is in flight per conversation.
type session struct {
	mu     sync.Mutex
	state  *State
	userID string // non-empty when the session is authenticated

	lastUserText string
	lastUserAt   time.Time
}

// Orchestrator coordinates chat round-trips: it appends turns, drives the
// dialog engine or the generative provider, applies the typing delay and
// commits results to conversation state. Collaborator failures never escape;
// they become an apology turn with isTyping restored to false.
type Orchestrator struct {
	engine    *Engine
	logger    *logging.Logger
	completer llm.Client
	storage   store.Store
	notifier  Notifier
	snapshots *SessionStore
	metrics   *metrics.ChatMetrics

	mode         Mode
	delay        DelayFunc
	dedupeWindow time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithMode selects scripted or smart turn handling.
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) {
		if mode == ModeScripted || mode == ModeSmart {
			o.mode = mode
		}
	}
}

// WithDelay injects the typing-delay strategy.
func WithDelay(delay DelayFunc) Option {
	return func(o *Orchestrator) {
		if delay != nil {
			o.delay = delay
		}
	}
}

// WithCompleter wires the generative completion provider.
func WithCompleter(c llm.Client) Option {
	return func(o *Orchestrator) { o.completer = c }
}

// WithStorage wires the persistence collaborator.
func WithStorage(s store.Store) Option {
	return func(o *Orchestrator) { o.storage = s }
}

// WithNotifier wires the email collaborator.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithSnapshots wires the session snapshot store.
func WithSnapshots(s *SessionStore) Option {
	return func(o *Orchestrator) { o.snapshots = s }
}

// WithMetrics wires the chat metric family.
func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithDedupeWindow overrides the duplicate-submit suppression window.
func WithDedupeWindow(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.dedupeWindow = d
		}
	}
}

// NewOrchestrator wires the turn orchestrator around the dialog engine.
// All collaborators are optional; missing ones degrade to deterministic or
// best-effort behavior.
func NewOrchestrator(engine *Engine, logger *logging.Logger, opts ...Option) *Orchestrator {
	if engine == nil {
		panic("chat: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		engine:       engine,
		logger:       logger,
		mode:         ModeScripted,
		delay:        TypingDelay,
		dedupeWindow: defaultDedupeWindow,
		sessions:     make(map[string]*session),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartSession opens a conversation and returns the greeting turn. When a
// snapshot store is configured and holds prior state for the id, the
// conversation resumes from it instead of re-greeting.
func (o *Orchestrator) StartSession(ctx context.Context, sessionID, userID string) (Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Message{}, errors.New("chat: session id cannot be empty")
	}

	o.mu.Lock()
	if _, exists := o.sessions[sessionID]; exists {
		o.mu.Unlock()
		return Message{}, ErrSessionExists
	}
	sess := &session{state: NewState(), userID: userID}
	o.sessions[sessionID] = sess
	o.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if o.snapshots != nil {
		if restored, err := o.snapshots.Load(ctx, sessionID); err == nil && len(restored.Messages) > 0 {
			restored.IsTyping = false
			sess.state = restored
			if last, ok := restored.LastBotMessage(); ok {
				return last, nil
			}
		} else if err != nil && !errors.Is(err, ErrSessionNotFound) {
			o.logger.Warn("failed to restore session snapshot", "error", err, "session_id", sessionID)
		}
	}

	greeting := NewMessage(o.engine.Greeting(), SenderBot)
	sess.state.Append(greeting)
	o.mirrorChatLog(ctx, sess, greeting)
	o.saveSnapshot(ctx, sessionID, sess.state)
	return greeting, nil
}

// HandleMessage processes one user turn and returns the bot reply. Turn
// processing is serialized per conversation; a second message for the same
// session blocks until the first reply is committed.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, text string) (Message, error) {
	sess, err := o.session(sessionID)
	if err != nil {
		return Message{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	trimmed := strings.TrimSpace(text)
	now := time.Now()

	// Duplicate submit guard: identical text in immediate succession is
	// answered from the committed turn instead of being appended again.
	if trimmed != "" && trimmed == sess.lastUserText && now.Sub(sess.lastUserAt) < o.dedupeWindow {
		if last, ok := sess.state.LastBotMessage(); ok {
			return last, nil
		}
	}

	userMsg := NewMessage(trimmed, SenderUser)
	sess.state.Append(userMsg)
	sess.lastUserText = trimmed
	sess.lastUserAt = now
	sess.state.IsTyping = true
	o.mirrorChatLog(ctx, sess, userMsg)

	reply, procErr := o.respond(ctx, sess, trimmed)
	status := "ok"
	if procErr != nil {
		status = "error"
		o.logger.Error("chat turn failed", "error", procErr, "session_id", sessionID, "mode", string(o.mode))
	}
	if reply == "" {
		reply = replyProcessingFailed
	}

	o.pause(ctx, reply)

	botMsg := NewMessage(reply, SenderBot)
	sess.state.Append(botMsg)
	sess.state.IsTyping = false
	o.mirrorChatLog(ctx, sess, botMsg)
	o.saveSnapshot(ctx, sessionID, sess.state)
	o.metrics.ObserveTurn(string(o.mode), status)

	return botMsg, nil
}

// ClearHistory resets the conversation to its initial form and re-greets.
func (o *Orchestrator) ClearHistory(ctx context.Context, sessionID string) (Message, error) {
	sess, err := o.session(sessionID)
	if err != nil {
		return Message{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state.Reset()
	sess.lastUserText = ""
	sess.lastUserAt = time.Time{}

	greeting := NewMessage(o.engine.Greeting(), SenderBot)
	sess.state.Append(greeting)
	o.mirrorChatLog(ctx, sess, greeting)
	o.saveSnapshot(ctx, sessionID, sess.state)
	return greeting, nil
}

// History returns a copy of the conversation's message sequence.
func (o *Orchestrator) History(sessionID string) ([]Message, error) {
	sess, err := o.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Message, len(sess.state.Messages))
	copy(out, sess.state.Messages)
	return out, nil
}

// BotState returns the conversation's current dialog node.
func (o *Orchestrator) BotState(sessionID string) (BotState, error) {
	sess, err := o.session(sessionID)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.BotState, nil
}

func (o *Orchestrator) session(sessionID string) (*session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	sess, ok := o.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// respond runs the mode branch for one turn. The returned reply is always
// user-presentable; the error is diagnostic only.
func (o *Orchestrator) respond(ctx context.Context, sess *session, input string) (string, error) {
	if o.mode == ModeSmart {
		return o.respondSmart(ctx, sess, input)
	}
	return o.respondScripted(ctx, sess, input)
}

func (o *Orchestrator) respondScripted(ctx context.Context, sess *session, input string) (string, error) {
	tr := o.engine.Process(input, sess.state)
	sess.state.Apply(tr)
	reply := tr.Reply

	if tr.AppointmentDone && tr.Appointment != nil {
		if err := o.persistBooking(ctx, sess.userID, tr.Appointment.Service, tr.Appointment.Date, tr.Appointment.Time, tr.Appointment.Details); err != nil {
			return replyBookingFailed, err
		}
	}

	if tr.ContactDone && tr.Contact != nil && o.notifier != nil {
		if err := o.notifier.SendLeadNotification(ctx, tr.Contact.Name, tr.Contact.Email); err != nil {
			o.logger.Warn("failed to notify captured lead", "error", err)
		}
	}

	return reply, nil
}

func (o *Orchestrator) respondSmart(ctx context.Context, sess *session, input string) (string, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "atendente") || strings.Contains(lower, "humano") || strings.Contains(lower, "pessoa real"):
		return o.forwardToAgent(ctx, sess)

	case IsAppointmentRequest(lower):
		return o.handleBookingIntent(ctx, sess, input)

	default:
		if o.completer == nil {
			return o.respondScripted(ctx, sess, input)
		}
		messages := []llm.Message{{Role: llm.RoleSystem, Content: supportSystemPrompt}}
		for _, msg := range sess.state.Messages {
			role := llm.RoleAssistant
			if msg.Sender == SenderUser {
				role = llm.RoleUser
			}
			messages = append(messages, llm.Message{Role: role, Content: msg.Text})
		}
		resp, err := o.completer.Complete(ctx, llm.Request{Messages: messages})
		if err != nil {
			o.metrics.ObserveLLMFailure()
			return replyProcessingFailed, fmt.Errorf("chat: completion failed: %w", err)
		}
		return resp.Text, nil
	}
}

func (o *Orchestrator) forwardToAgent(ctx context.Context, sess *session) (string, error) {
	fields := ExtractBookingFields(userTranscriptText(sess.state))
	if fields.Name == "" || fields.Email == "" {
		return replyHandoffNeedContact, nil
	}
	if o.notifier == nil {
		return replyHandoffNeedContact, nil
	}
	if err := o.notifier.ForwardTranscript(ctx, fields.Name, fields.Email, Transcript(sess.state.Messages)); err != nil {
		return replyHandoffFailed, fmt.Errorf("chat: handoff forward failed: %w", err)
	}
	return replyHandoffForwarded, nil
}

func (o *Orchestrator) handleBookingIntent(ctx context.Context, sess *session, input string) (string, error) {
	fields := ExtractBookingFields(input)
	missing := fields.MissingBookingFields()

	if len(missing) > 0 {
		if o.completer == nil {
			return "Para concluir seu agendamento, ainda preciso de: " + strings.Join(missing, ", ") + ". Pode me informar?", nil
		}
		system := fmt.Sprintf("O usuário está tentando agendar um serviço, mas está faltando: %s. Solicite educadamente as informações faltantes para completar o agendamento. Informações já fornecidas: nome=%q, email=%q, serviço=%q, data=%q, horário=%q.",
			strings.Join(missing, ", "), fields.Name, fields.Email, fields.Service, fields.Date, fields.Time)
		resp, err := o.completer.Complete(ctx, llm.Request{Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: input},
		}})
		if err != nil {
			o.metrics.ObserveLLMFailure()
			return replyProcessingFailed, fmt.Errorf("chat: completion failed: %w", err)
		}
		return resp.Text, nil
	}

	details := fmt.Sprintf("Cliente: %s, Email: %s", fields.Name, fields.Email)
	if err := o.persistBooking(ctx, sess.userID, fields.Service, fields.Date, fields.Time, details); err != nil {
		return replyBookingFailed, err
	}
	return smartBookingSummary(fields), nil
}

// persistBooking hands a completed booking to the storage collaborator and
// notifies the support inbox. The diagnostic record and the confirmation
// email are best effort; the appointment insert is not.
func (o *Orchestrator) persistBooking(ctx context.Context, userID, service, date, bookingTime, details string) error {
	if o.storage == nil {
		return nil
	}

	err := o.storage.InsertAppointment(ctx, store.Appointment{
		UserID:      userID,
		ServiceType: service,
		Date:        date,
		Time:        bookingTime,
		Details:     details,
		Status:      store.StatusPending,
	})
	if err != nil {
		return fmt.Errorf("chat: failed to save appointment: %w", err)
	}
	o.metrics.ObserveAppointment()

	if strings.Contains(strings.ToLower(details), "problema") {
		if diagErr := o.storage.InsertDiagnostic(ctx, store.Diagnostic{
			UserID:          userID,
			ProblemReported: details,
		}); diagErr != nil {
			o.logger.Warn("failed to record diagnostic", "error", diagErr)
		}
	}

	if o.notifier != nil {
		if mailErr := o.notifier.SendBookingConfirmation(ctx, service, date, bookingTime, details); mailErr != nil {
			o.logger.Warn("failed to send booking confirmation", "error", mailErr)
		}
	}

	return nil
}

// mirrorChatLog writes the turn to the chat_logs table when the session is
// authenticated. Always best effort.
func (o *Orchestrator) mirrorChatLog(ctx context.Context, sess *session, msg Message) {
	if o.storage == nil || sess.userID == "" {
		return
	}
	err := o.storage.InsertChatLog(ctx, store.ChatLog{
		UserID:      sess.userID,
		MessageText: msg.Text,
		MessageType: string(msg.Sender),
	})
	if err != nil {
		o.logger.Warn("failed to mirror chat log", "error", err)
	}
}

func (o *Orchestrator) saveSnapshot(ctx context.Context, sessionID string, state *State) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.Save(ctx, sessionID, state); err != nil {
		o.logger.Warn("failed to snapshot session", "error", err, "session_id", sessionID)
	}
}

// pause applies the simulated typing delay, bailing out early when the
// context is done so the turn still commits.
func (o *Orchestrator) pause(ctx context.Context, reply string) {
	d := o.delay(reply)
	if d <= 0 {
		return
	}
	o.metrics.ObserveReplyDelay(d.Seconds())
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Transcript renders the conversation for a human agent.
func Transcript(msgs []Message) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := "Bot"
		if msg.Sender == SenderUser {
			label = "Cliente"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(msg.Text)
	}
	return b.String()
}

func userTranscriptText(st *State) string {
	var parts []string
	for _, msg := range st.Messages {
		if msg.Sender == SenderUser {
			parts = append(parts, msg.Text)
		}
	}
	return strings.Join(parts, " ")
}

func smartBookingSummary(f BookingFields) string {
	return fmt.Sprintf(`Agendamento confirmado com sucesso!

📝 Resumo do agendamento:
- Nome: %s
- Email: %s
- Serviço: %s
- Data: %s
- Horário: %s

Um de nossos técnicos entrará em contato para confirmar o agendamento. Posso ajudar com mais alguma coisa?`,
		f.Name, f.Email, f.Service, f.Date, f.Time)
}

const (
	replyProcessingFailed = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente ou entre em contato por telefone."

	replyBookingFailed = "Desculpe, ocorreu um erro ao registrar seu agendamento. Por favor, tente novamente mais tarde ou entre em contato por telefone."

	replyHandoffForwarded = "Entendi que você precisa falar com um de nossos técnicos. Suas informações foram encaminhadas e um atendente entrará em contato em breve. Enquanto isso, posso ajudar com mais alguma coisa?"

	replyHandoffFailed = "Desculpe, ocorreu um erro ao encaminhar sua solicitação. Por favor, tente novamente mais tarde ou entre em contato diretamente pelo telefone."

	replyHandoffNeedContact = "Para encaminhar seu atendimento a um técnico, preciso de algumas informações. Por favor, informe seu nome completo e email para contato."
)

const supportSystemPrompt = `Você é um assistente virtual da HelpTech, uma empresa de suporte técnico especializado para computadores e dispositivos móveis.

Seus serviços incluem:
- Formatação de Computadores
- Remoção de Vírus
- Configuração de Redes
- Reparo de Hardware

Seu objetivo principal é ajudar a diagnosticar problemas técnicos e oferecer soluções.

1. Faça perguntas específicas para entender o problema do cliente
2. Ofereça soluções passo-a-passo quando possível
3. Recomende agendamento de serviço quando o problema parecer complexo demais para resolver remotamente

Use linguagem profissional, porém acessível. Horário de atendimento: Segunda a sexta, das 8h às 18h.`
