package chat

// BotState is the current node of the dialog flow. The set is closed; the
// engine never produces a value outside it.
type BotState string

const (
	StateGreeting           BotState = "greeting"
	StateMainMenu           BotState = "main_menu"
	StateFAQ                BotState = "faq"
	StateServices           BotState = "services"
	StateServiceDetails     BotState = "service_details"
	StateAppointmentService BotState = "appointment_service"
	StateAppointmentDate    BotState = "appointment_date"
	StateAppointmentTime    BotState = "appointment_time"
	StateAppointmentDetails BotState = "appointment_details"
	StateContactName        BotState = "contact_name"
	StateContactEmail       BotState = "contact_email"
	StateHumanAgent         BotState = "human_agent"
	StateExit               BotState = "exit"
)

// AllStates lists every dialog state, in flow order.
var AllStates = []BotState{
	StateGreeting,
	StateMainMenu,
	StateFAQ,
	StateServices,
	StateServiceDetails,
	StateAppointmentService,
	StateAppointmentDate,
	StateAppointmentTime,
	StateAppointmentDetails,
	StateContactName,
	StateContactEmail,
	StateHumanAgent,
	StateExit,
}

// Valid reports whether s is a member of the enumerated state set.
func (s BotState) Valid() bool {
	for _, st := range AllStates {
		if s == st {
			return true
		}
	}
	return false
}

// Contact is captured lead information, filled across two dialog states.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Complete reports whether both fields have been captured.
func (c Contact) Complete() bool {
	return c.Name != "" && c.Email != ""
}

// NoDetailsSentinel is stored when the user declines to add booking details.
const NoDetailsSentinel = "Nenhum detalhe adicional"

// AppointmentInfo is a requested service booking, filled turn by turn.
type AppointmentInfo struct {
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Details string `json:"details,omitempty"`
}

// Complete reports whether all four logical fields are present. Details
// counts as present when the sentinel was stored.
func (a AppointmentInfo) Complete() bool {
	return a.Service != "" && a.Date != "" && a.Time != "" && a.Details != ""
}

// State is the conversation aggregate. One live instance per session; not
// safe for concurrent use — the orchestrator serializes turns.
type State struct {
	Messages         []Message        `json:"messages"`
	BotState         BotState         `json:"bot_state"`
	Contact          *Contact         `json:"contact,omitempty"`
	Appointment      *AppointmentInfo `json:"appointment,omitempty"`
	CurrentServiceID string           `json:"current_service_id,omitempty"`
	IsTyping         bool             `json:"is_typing"`
}

// NewState returns a fresh aggregate at the greeting node.
func NewState() *State {
	return &State{BotState: StateGreeting}
}

// Append adds a message to the ordered sequence.
func (s *State) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// Reset restores the aggregate to its initial form, dropping history and
// in-progress captures.
func (s *State) Reset() {
	*s = State{BotState: StateGreeting}
}

// LastUserMessage returns the most recent user turn, if any.
func (s *State) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// LastBotMessage returns the most recent bot turn, if any.
func (s *State) LastBotMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderBot {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Apply folds a dialog transition into the aggregate. Deltas carried by the
// transition replace the corresponding fields wholesale, so every effect on
// the aggregate is statically enumerable.
func (s *State) Apply(tr Transition) {
	s.BotState = tr.Next
	if tr.ServiceID != "" {
		s.CurrentServiceID = tr.ServiceID
	}
	if tr.Contact != nil {
		c := *tr.Contact
		s.Contact = &c
	}
	if tr.Appointment != nil {
		a := *tr.Appointment
		s.Appointment = &a
	}
}
