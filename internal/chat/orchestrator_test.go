package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helptech/helptech-platform/internal/catalog"
	"github.com/helptech/helptech-platform/internal/llm"
	"github.com/helptech/helptech-platform/internal/store"
	"github.com/helptech/helptech-platform/pkg/logging"
)

type fakeStore struct {
	mu           sync.Mutex
	appointments []store.Appointment
	diagnostics  []store.Diagnostic
	chatLogs     []store.ChatLog

	appointmentErr error
}

func (f *fakeStore) InsertAppointment(_ context.Context, a store.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appointmentErr != nil {
		return f.appointmentErr
	}
	f.appointments = append(f.appointments, a)
	return nil
}

func (f *fakeStore) InsertDiagnostic(_ context.Context, d store.Diagnostic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diagnostics = append(f.diagnostics, d)
	return nil
}

func (f *fakeStore) InsertChatLog(_ context.Context, l store.ChatLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatLogs = append(f.chatLogs, l)
	return nil
}

type notifierCall struct {
	kind                       string
	name, email, transcript    string
	service, date, hour, extra string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall

	confirmationErr error
	forwardErr      error
	leadErr         error
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, service, date, hour, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmationErr != nil {
		return f.confirmationErr
	}
	f.calls = append(f.calls, notifierCall{kind: "confirmation", service: service, date: date, hour: hour, extra: details})
	return nil
}

func (f *fakeNotifier) ForwardTranscript(_ context.Context, name, email, transcript string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forwardErr != nil {
		return f.forwardErr
	}
	f.calls = append(f.calls, notifierCall{kind: "forward", name: name, email: email, transcript: transcript})
	return nil
}

func (f *fakeNotifier) SendLeadNotification(_ context.Context, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leadErr != nil {
		return f.leadErr
	}
	f.calls = append(f.calls, notifierCall{kind: "lead", name: name, email: email})
	return nil
}

func (f *fakeNotifier) byKind(kind string) []notifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notifierCall
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type fakeCompleter struct {
	mu       sync.Mutex
	requests []llm.Request
	reply    string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.reply}, nil
}

func newTestOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	engine := NewEngine(catalog.Default(), WithClock(fixedClock(10)))
	base := []Option{WithDelay(NoDelay)}
	return NewOrchestrator(engine, logging.NewWithWriter("error", testWriter{t}), append(base, opts...)...)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestTypingDelayClamps(t *testing.T) {
	assert.Equal(t, 700*time.Millisecond, TypingDelay(""))
	assert.Equal(t, 700*time.Millisecond, TypingDelay("oi"))
	assert.Equal(t, 800*time.Millisecond, TypingDelay(strings.Repeat("a", 80)))
	assert.Equal(t, time.Second, TypingDelay(strings.Repeat("a", 100)))
	assert.Equal(t, time.Second, TypingDelay(strings.Repeat("a", 5000)))
}

func TestStartSessionGreets(t *testing.T) {
	o := newTestOrchestrator(t)

	greeting, err := o.StartSession(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, SenderBot, greeting.Sender)
	assert.Contains(t, greeting.Text, "Bem-vindo à HelpTech")

	history, err := o.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, greeting.ID, history[0].ID)

	_, err = o.StartSession(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestStartSessionRejectsEmptyID(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.StartSession(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestHandleMessageUnknownSession(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.HandleMessage(context.Background(), "ghost", "oi")
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = o.History("ghost")
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = o.ClearHistory(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestHandleMessageAppendsBothTurns(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "oi")
	require.NoError(t, err)
	assert.Equal(t, SenderBot, reply.Sender)
	assert.NotEmpty(t, reply.Text)

	history, err := o.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, SenderUser, history[1].Sender)
	assert.Equal(t, "oi", history[1].Text)
	assert.Equal(t, reply.ID, history[2].ID)
}

func TestDuplicateSubmitIsSuppressed(t *testing.T) {
	o := newTestOrchestrator(t, WithDedupeWindow(time.Minute))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	first, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)

	second, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "duplicate resubmit is answered from the committed turn")

	history, err := o.History("s1")
	require.NoError(t, err)
	assert.Len(t, history, 3, "duplicate must not be appended")
}

func TestDuplicateOutsideWindowIsProcessed(t *testing.T) {
	o := newTestOrchestrator(t, WithDedupeWindow(0))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	first, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)
	second, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := o.History("s1")
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestScriptedBookingPersistsAndNotifies(t *testing.T) {
	db := &fakeStore{}
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithStorage(db), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	for _, input := range []string{"oi", "3", "1", "25/04/2025", "14:30"} {
		_, err = o.HandleMessage(ctx, "s1", input)
		require.NoError(t, err)
	}
	require.Empty(t, db.appointments, "nothing persists before the details turn")

	reply, err := o.HandleMessage(ctx, "s1", "não")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Resumo do agendamento")

	require.Len(t, db.appointments, 1)
	appt := db.appointments[0]
	assert.Equal(t, "Formatação de PC", appt.ServiceType)
	assert.Equal(t, "25/04/2025", appt.Date)
	assert.Equal(t, "14:30", appt.Time)
	assert.Equal(t, NoDetailsSentinel, appt.Details)
	assert.Equal(t, store.StatusPending, appt.Status)
	assert.Empty(t, appt.UserID, "anonymous session")

	confirmations := mail.byKind("confirmation")
	require.Len(t, confirmations, 1)
	assert.Equal(t, "Formatação de PC", confirmations[0].service)

	state, err := o.BotState("s1")
	require.NoError(t, err)
	assert.Equal(t, StateMainMenu, state)
}

func TestScriptedBookingPersistFailure(t *testing.T) {
	db := &fakeStore{appointmentErr: errors.New("connection refused")}
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithStorage(db), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	for _, input := range []string{"oi", "3", "1", "25/04/2025", "14:30"} {
		_, err = o.HandleMessage(ctx, "s1", input)
		require.NoError(t, err)
	}

	reply, err := o.HandleMessage(ctx, "s1", "não")
	require.NoError(t, err, "collaborator failures never escape the turn")
	assert.Contains(t, reply.Text, "erro ao registrar seu agendamento")
	assert.Empty(t, mail.byKind("confirmation"), "no confirmation for a failed booking")

	// the conversation stays usable
	next, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)
	assert.NotEmpty(t, next.Text)
}

func TestBookingConfirmationFailureIsBestEffort(t *testing.T) {
	db := &fakeStore{}
	mail := &fakeNotifier{confirmationErr: errors.New("smtp down")}
	o := newTestOrchestrator(t, WithStorage(db), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	for _, input := range []string{"oi", "3", "1", "25/04/2025", "14:30"} {
		_, err = o.HandleMessage(ctx, "s1", input)
		require.NoError(t, err)
	}
	reply, err := o.HandleMessage(ctx, "s1", "não")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Resumo do agendamento", "booking succeeds even when email fails")
	assert.Len(t, db.appointments, 1)
}

func TestContactCaptureSendsLeadNotification(t *testing.T) {
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	for _, input := range []string{"oi", "5", "João Silva"} {
		_, err = o.HandleMessage(ctx, "s1", input)
		require.NoError(t, err)
	}
	require.Empty(t, mail.byKind("lead"), "no notification before email is captured")

	reply, err := o.HandleMessage(ctx, "s1", "joao@exemplo.com")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Seus dados foram registrados")

	leads := mail.byKind("lead")
	require.Len(t, leads, 1)
	assert.Equal(t, "João Silva", leads[0].name)
	assert.Equal(t, "joao@exemplo.com", leads[0].email)
}

func TestChatLogMirroring(t *testing.T) {
	db := &fakeStore{}
	o := newTestOrchestrator(t, WithStorage(db))
	ctx := context.Background()

	_, err := o.StartSession(ctx, "anon", "")
	require.NoError(t, err)
	_, err = o.HandleMessage(ctx, "anon", "oi")
	require.NoError(t, err)
	assert.Empty(t, db.chatLogs, "anonymous sessions are never mirrored")

	_, err = o.StartSession(ctx, "auth", "user-42")
	require.NoError(t, err)
	_, err = o.HandleMessage(ctx, "auth", "oi")
	require.NoError(t, err)

	require.Len(t, db.chatLogs, 3, "greeting, user turn and bot turn")
	for _, l := range db.chatLogs {
		assert.Equal(t, "user-42", l.UserID)
	}
	assert.Equal(t, "bot", db.chatLogs[0].MessageType)
	assert.Equal(t, "user", db.chatLogs[1].MessageType)
	assert.Equal(t, "oi", db.chatLogs[1].MessageText)
	assert.Equal(t, "bot", db.chatLogs[2].MessageType)
}

func TestClearHistoryResetsAndRegreets(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)
	_, err = o.HandleMessage(ctx, "s1", "3")
	require.NoError(t, err)

	greeting, err := o.ClearHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, greeting.Text, "Bem-vindo à HelpTech")

	history, err := o.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	state, err := o.BotState("s1")
	require.NoError(t, err)
	assert.Equal(t, StateGreeting, state)
}

func TestSmartModeFreeformUsesCompleter(t *testing.T) {
	completer := &fakeCompleter{reply: "Vamos verificar o gerenciador de tarefas primeiro."}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithCompleter(completer))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "meu computador está muito lento")
	require.NoError(t, err)
	assert.Equal(t, completer.reply, reply.Text)

	require.Len(t, completer.requests, 1)
	msgs := completer.requests[0].Messages
	require.NotEmpty(t, msgs)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "HelpTech")
	assert.Equal(t, llm.RoleUser, msgs[len(msgs)-1].Role)
	assert.Equal(t, "meu computador está muito lento", msgs[len(msgs)-1].Content)
}

func TestSmartModeCompleterFailureApologizes(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("quota exceeded")}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithCompleter(completer))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "meu computador está muito lento")
	require.NoError(t, err, "provider failure becomes an apology turn, not an error")
	assert.Contains(t, reply.Text, "erro ao processar sua mensagem")

	history, err := o.History("s1")
	require.NoError(t, err)
	assert.Len(t, history, 3, "both turns are committed despite the failure")
}

func TestSmartModeWithoutCompleterFallsBackToScript(t *testing.T) {
	o := newTestOrchestrator(t, WithMode(ModeSmart))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "menu")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "1️⃣")
}

func TestSmartHandoffForwardsTranscript(t *testing.T) {
	completer := &fakeCompleter{reply: "Certo, anotado!"}
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithCompleter(completer), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	_, err = o.HandleMessage(ctx, "s1", "me chamo João Silva, meu email é joao@exemplo.com")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "quero falar com um atendente")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "foram encaminhadas")

	forwards := mail.byKind("forward")
	require.Len(t, forwards, 1)
	assert.Equal(t, "João Silva", forwards[0].name)
	assert.Equal(t, "joao@exemplo.com", forwards[0].email)
	assert.Contains(t, forwards[0].transcript, "Cliente: me chamo João Silva")
	assert.Contains(t, forwards[0].transcript, "Bot: ")
}

func TestSmartHandoffWithoutContactAsksForIt(t *testing.T) {
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "quero falar com um atendente")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "informe seu nome completo e email")
	assert.Empty(t, mail.byKind("forward"))
}

func TestSmartHandoffForwardFailure(t *testing.T) {
	mail := &fakeNotifier{forwardErr: errors.New("smtp down")}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	_, err = o.HandleMessage(ctx, "s1", "me chamo João Silva, meu email é joao@exemplo.com")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "quero falar com um atendente")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "erro ao encaminhar sua solicitação")
}

func TestSmartBookingCompletePersists(t *testing.T) {
	db := &fakeStore{}
	mail := &fakeNotifier{}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithStorage(db), WithNotifier(mail))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "user-7")
	require.NoError(t, err)

	msg := "Quero agendar! me chamo João Silva, meu email é joao@exemplo.com, serviço de formatação, dia: 25/04/2025, horário: 14:30"
	reply, err := o.HandleMessage(ctx, "s1", msg)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Agendamento confirmado com sucesso")

	require.Len(t, db.appointments, 1)
	appt := db.appointments[0]
	assert.Equal(t, "user-7", appt.UserID)
	assert.Equal(t, "formatação", appt.ServiceType)
	assert.Equal(t, "25/04/2025", appt.Date)
	assert.Equal(t, "14:30", appt.Time)
	assert.Equal(t, "Cliente: João Silva, Email: joao@exemplo.com", appt.Details)
	assert.Equal(t, store.StatusPending, appt.Status)

	require.Len(t, mail.byKind("confirmation"), 1)
}

func TestSmartBookingMissingFieldsWithoutCompleter(t *testing.T) {
	db := &fakeStore{}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithStorage(db))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "quero agendar uma visita")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ainda preciso de")
	assert.Contains(t, reply.Text, "nome")
	assert.Contains(t, reply.Text, "email")
	assert.Empty(t, db.appointments)
}

func TestSmartBookingMissingFieldsAskedViaCompleter(t *testing.T) {
	completer := &fakeCompleter{reply: "Claro! Para concluir, qual é o seu nome e email?"}
	o := newTestOrchestrator(t, WithMode(ModeSmart), WithCompleter(completer))
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "s1", "quero agendar uma visita, dia: 25/04/2025")
	require.NoError(t, err)
	assert.Equal(t, completer.reply, reply.Text)

	require.Len(t, completer.requests, 1)
	system := completer.requests[0].Messages[0]
	assert.Equal(t, llm.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "está faltando")
	assert.Contains(t, system.Content, "nome")
	assert.NotContains(t, system.Content, "data,", "already-provided fields are not asked again")
}

func TestConcurrentTurnsAreSerializedPerSession(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()
	_, err := o.StartSession(ctx, "s1", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	inputs := []string{"1", "2", "3", "menu", "5"}
	for _, input := range inputs {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			_, herr := o.HandleMessage(ctx, "s1", in)
			assert.NoError(t, herr)
		}(input)
	}
	wg.Wait()

	history, err := o.History("s1")
	require.NoError(t, err)
	assert.Len(t, history, 1+2*len(inputs), "every turn commits exactly one user and one bot message")
	for i := 1; i < len(history); i++ {
		want := SenderUser
		if i%2 == 0 {
			want = SenderBot
		}
		assert.Equal(t, want, history[i].Sender, "turns never interleave")
	}
}

func TestTranscript(t *testing.T) {
	msgs := []Message{
		{Sender: SenderBot, Text: "Olá!"},
		{Sender: SenderUser, Text: "oi"},
	}
	assert.Equal(t, "Bot: Olá!\nCliente: oi", Transcript(msgs))
	assert.Equal(t, "", Transcript(nil))
}
