package chat

import (
	"regexp"
	"strings"
)

// BookingFields holds whatever structured booking data could be pulled out
// of free text. Fields are independent; any subset may be empty.
type BookingFields struct {
	Name    string
	Email   string
	Service string
	Date    string
	Time    string
}

var (
	extractNameRE    = regexp.MustCompile(`(?i)(?:me\s+chamo|meu\s+nome\s+[ée]|nome[:\s]+)\s*([A-Za-zÀ-ú ]+)(?:[.,]|$)`)
	extractEmailRE   = regexp.MustCompile(`(?i)(?:meu\s+email\s+[ée]|email[:\s]+)\s*([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`)
	extractServiceRE = regexp.MustCompile(`(?i)(?:serviço\s+de|quero\s+agendar\s+)\s*([A-Za-zÀ-ú ]+)(?:[.,]|$)`)
	extractDateRE    = regexp.MustCompile(`(?i)(?:dia|data)[:\s]+\s*(\d{1,2}/\d{1,2}/\d{4}|\d{1,2}\s+(?:de\s+)?(?:janeiro|fevereiro|março|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)(?:\s+de\s+\d{4})?)`)
	extractTimeRE    = regexp.MustCompile(`(?i)(?:hora|horário)[:\s]+\s*(\d{1,2}(?::\d{2})?(?:\s*[hapm]{1,2})?)`)
)

// ExtractBookingFields best-effort parses structured booking fields out of
// unconstrained natural-language text. Idempotent and side-effect-free; a
// field that cannot be found is left empty, never an error.
func ExtractBookingFields(text string) BookingFields {
	return BookingFields{
		Name:    firstGroup(extractNameRE, text),
		Email:   firstGroup(extractEmailRE, text),
		Service: firstGroup(extractServiceRE, text),
		Date:    firstGroup(extractDateRE, text),
		Time:    firstGroup(extractTimeRE, text),
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// appointmentTriggers is the fixed keyword set that signals booking intent.
var appointmentTriggers = []string{
	"agendar", "marcar", "consulta", "atendimento", "visita", "vistoria", "serviço",
}

// IsAppointmentRequest reports whether the text signals booking intent.
func IsAppointmentRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range appointmentTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// MissingBookingFields lists the pt-BR labels of fields still absent from
// the extraction, in fixed order. Empty when the booking is complete.
func (f BookingFields) MissingBookingFields() []string {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "nome")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	}
	if f.Service == "" {
		missing = append(missing, "tipo de serviço")
	}
	if f.Date == "" {
		missing = append(missing, "data")
	}
	if f.Time == "" {
		missing = append(missing, "horário")
	}
	return missing
}
