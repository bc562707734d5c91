package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helptech/helptech-platform/internal/catalog"
)

var (
	datePattern  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	timePattern  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Transition is the result of processing one user input against the dialog
// flow. Deltas are nil when the transition does not touch them.
type Transition struct {
	Reply string
	Next  BotState

	Contact     *Contact
	Appointment *AppointmentInfo
	ServiceID   string

	// AppointmentDone marks the single transition on which a fully
	// populated booking leaves appointment_details for main_menu.
	AppointmentDone bool
	// ContactDone marks contact capture completing on contact_email.
	ContactDone bool
}

// Engine is the deterministic dialog state machine. Process performs no I/O
// and is safe for concurrent use; only the greeting varies with the clock.
type Engine struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithClock overrides the clock used for the time-of-day greeting.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds a dialog engine over the given read-only catalog.
func NewEngine(c *catalog.Catalog, opts ...EngineOption) *Engine {
	if c == nil {
		panic("chat: catalog cannot be nil")
	}
	e := &Engine{catalog: c, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process maps raw user input and the current aggregate to a reply, the
// next state and the state deltas. It never fails: unrecognized input in
// any state yields a deterministic re-prompt, and an out-of-set state value
// falls back to the main menu.
func (e *Engine) Process(input string, st *State) Transition {
	lower := strings.ToLower(strings.TrimSpace(input))

	// Global overrides, valid in every state.
	if lower == "menu" || lower == "voltar" || lower == "voltar ao menu" {
		return Transition{Reply: e.mainMenu(), Next: StateMainMenu}
	}
	if strings.Contains(lower, "humano") || strings.Contains(lower, "atendente") || strings.Contains(lower, "pessoa") {
		return Transition{Reply: replyHumanHandoff, Next: StateHumanAgent}
	}
	if lower == "sair" || lower == "finalizar" || lower == "encerrar" {
		return Transition{Reply: replyFarewell, Next: StateExit}
	}

	switch st.BotState {
	case StateGreeting:
		return Transition{Reply: e.mainMenu(), Next: StateMainMenu}

	case StateMainMenu:
		return e.processMainMenu(lower)

	case StateServices:
		return e.processServices(lower)

	case StateServiceDetails:
		return e.processServiceDetails(lower, st)

	case StateFAQ:
		if idx, ok := numericChoice(lower, len(e.catalog.FAQs())); ok {
			return Transition{Reply: e.faqAnswer(idx), Next: StateMainMenu}
		}
		return Transition{Reply: replyFAQRetry, Next: StateFAQ}

	case StateAppointmentService:
		return e.processAppointmentService(lower)

	case StateAppointmentDate:
		return e.processAppointmentDate(lower, st)

	case StateAppointmentTime:
		return e.processAppointmentTime(lower, st)

	case StateAppointmentDetails:
		return e.processAppointmentDetails(input, lower, st)

	case StateContactName:
		name := strings.TrimSpace(input)
		if len([]rune(name)) > 2 {
			return Transition{
				Reply:   "Obrigado, " + name + "! Agora, por favor, me informe seu e-mail para contato:",
				Next:    StateContactEmail,
				Contact: &Contact{Name: name},
			}
		}
		return Transition{Reply: replyContactNameRetry, Next: StateContactName}

	case StateContactEmail:
		return e.processContactEmail(lower, st)

	case StateHumanAgent:
		return Transition{Reply: replyHumanAgentWaiting, Next: StateMainMenu}

	case StateExit:
		return Transition{Reply: e.Greeting(), Next: StateGreeting}

	default:
		// Unknown state value: fatal for this turn only.
		return Transition{Reply: replySystemError + e.mainMenu(), Next: StateMainMenu}
	}
}

func (e *Engine) processMainMenu(lower string) Transition {
	switch {
	case lower == "1" || strings.Contains(lower, "serviço"):
		return Transition{Reply: e.servicesList(), Next: StateServices}
	case lower == "2" || strings.Contains(lower, "faq") || strings.Contains(lower, "pergunta") || strings.Contains(lower, "dúvida"):
		return Transition{Reply: e.faqList(), Next: StateFAQ}
	case lower == "3" || strings.Contains(lower, "agend"):
		return Transition{Reply: replyAskAppointmentService + "\n\n" + e.serviceNames(), Next: StateAppointmentService}
	case lower == "4":
		// humano/atendente are already caught by the global override.
		return Transition{Reply: replyHumanHandoff, Next: StateHumanAgent}
	case lower == "5" || strings.Contains(lower, "dados") || strings.Contains(lower, "contato"):
		return Transition{Reply: replyAskContactName, Next: StateContactName}
	}

	if idx, ok := e.catalog.MatchFAQ(lower); ok {
		return Transition{Reply: e.faqAnswer(idx), Next: StateMainMenu}
	}
	if svc, ok := e.catalog.MatchService(lower); ok {
		return Transition{Reply: e.serviceDetails(svc.ID), Next: StateServiceDetails, ServiceID: svc.ID}
	}

	return Transition{Reply: replyNotUnderstood + "\n\n" + e.mainMenu(), Next: StateMainMenu}
}

func (e *Engine) processServices(lower string) Transition {
	if idx, ok := numericChoice(lower, len(e.catalog.Services())); ok {
		svc, _ := e.catalog.ServiceByIndex(idx)
		return Transition{Reply: e.serviceDetails(svc.ID), Next: StateServiceDetails, ServiceID: svc.ID}
	}
	if svc, ok := e.catalog.MatchService(lower); ok {
		return Transition{Reply: e.serviceDetails(svc.ID), Next: StateServiceDetails, ServiceID: svc.ID}
	}
	return Transition{Reply: replyServiceRetry + "\n\n" + e.servicesList(), Next: StateServices}
}

func (e *Engine) processServiceDetails(lower string, st *State) Transition {
	if strings.Contains(lower, "agend") {
		name := ""
		if svc, ok := e.catalog.ServiceByID(st.CurrentServiceID); ok {
			name = svc.Name
		}
		return Transition{
			Reply:       replyAppointmentDatePrompt(name),
			Next:        StateAppointmentDate,
			Appointment: &AppointmentInfo{Service: name},
		}
	}
	return Transition{Reply: e.mainMenu(), Next: StateMainMenu}
}

func (e *Engine) processAppointmentService(lower string) Transition {
	if idx, ok := numericChoice(lower, len(e.catalog.Services())); ok {
		svc, _ := e.catalog.ServiceByIndex(idx)
		return Transition{
			Reply:       replyAppointmentDatePrompt(svc.Name),
			Next:        StateAppointmentDate,
			Appointment: &AppointmentInfo{Service: svc.Name},
		}
	}
	if svc, ok := e.catalog.MatchServiceByName(lower); ok {
		return Transition{
			Reply:       replyAppointmentDatePrompt(svc.Name),
			Next:        StateAppointmentDate,
			Appointment: &AppointmentInfo{Service: svc.Name},
		}
	}
	return Transition{Reply: replyAppointmentServiceRetry + "\n\n" + e.serviceNames(), Next: StateAppointmentService}
}

func (e *Engine) processAppointmentDate(lower string, st *State) Transition {
	if !datePattern.MatchString(lower) {
		return Transition{Reply: replyDateFormatRetry, Next: StateAppointmentDate}
	}
	appt := AppointmentInfo{}
	if st.Appointment != nil {
		appt = *st.Appointment
	}
	appt.Date = lower
	return Transition{
		Reply:       "Data registrada: " + lower + ". Agora me informe o horário preferencial para o atendimento (HH:MM):",
		Next:        StateAppointmentTime,
		Appointment: &appt,
	}
}

func (e *Engine) processAppointmentTime(lower string, st *State) Transition {
	if !timePattern.MatchString(lower) {
		return Transition{Reply: replyTimeFormatRetry, Next: StateAppointmentTime}
	}
	appt := AppointmentInfo{}
	if st.Appointment != nil {
		appt = *st.Appointment
	}
	appt.Time = lower
	return Transition{
		Reply:       "Horário registrado: " + lower + `. Existe algum detalhe adicional sobre o seu problema que gostaria de nos informar? (Se não houver, digite "não")`,
		Next:        StateAppointmentDetails,
		Appointment: &appt,
	}
}

func (e *Engine) processAppointmentDetails(input, lower string, st *State) Transition {
	details := strings.TrimSpace(input)
	if lower == "não" || lower == "nao" {
		details = NoDetailsSentinel
	}
	appt := AppointmentInfo{}
	if st.Appointment != nil {
		appt = *st.Appointment
	}
	appt.Details = details
	return Transition{
		Reply:           replyBookingSummary(appt),
		Next:            StateMainMenu,
		Appointment:     &appt,
		AppointmentDone: appt.Complete(),
	}
}

func (e *Engine) processContactEmail(lower string, st *State) Transition {
	if !emailPattern.MatchString(lower) {
		return Transition{Reply: replyContactEmailRetry, Next: StateContactEmail}
	}
	contact := Contact{}
	if st.Contact != nil {
		contact = *st.Contact
	}
	contact.Email = lower
	return Transition{
		Reply:       replyContactSummary(contact),
		Next:        StateMainMenu,
		Contact:     &contact,
		ContactDone: contact.Complete(),
	}
}

// numericChoice parses a 1-based catalog selection, returning a zero-based
// index when it falls inside the catalog range.
func numericChoice(lower string, size int) (int, bool) {
	n, err := strconv.Atoi(lower)
	if err != nil {
		return 0, false
	}
	idx := n - 1
	if idx < 0 || idx >= size {
		return 0, false
	}
	return idx, true
}

// Greeting returns the time-of-day greeting for a new conversation.
func (e *Engine) Greeting() string {
	greeting := "Olá"
	switch hour := e.now().Hour(); {
	case hour < 12:
		greeting = "Bom dia"
	case hour < 18:
		greeting = "Boa tarde"
	default:
		greeting = "Boa noite"
	}
	return greeting + "! Bem-vindo à HelpTech Suporte Técnico. Sou o assistente virtual e estou aqui para ajudar com informações sobre nossos serviços de suporte técnico para computadores e dispositivos móveis. Como posso ajudar hoje?"
}
