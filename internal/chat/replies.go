package chat

import (
	"fmt"
	"strings"
)

const (
	replyHumanHandoff = "Entendi que você precisa falar com um de nossos técnicos. Vou transferir seu atendimento agora. Um momento por favor..."

	replyFarewell = "Obrigado por conversar com a HelpTech! Se precisar de mais ajuda, é só voltar. Tenha um ótimo dia!"

	replyNotUnderstood = "Desculpe, não entendi completamente. Poderia escolher uma das opções abaixo?"

	replyServiceRetry = "Desculpe, não entendi qual serviço você escolheu. Por favor, digite o número do serviço:"

	replyFAQRetry = "Desculpe, não entendi qual pergunta você escolheu. Por favor, digite o número da pergunta ou 'menu' para voltar:"

	replyAskAppointmentService = "Para agendar um atendimento, primeiro me diga qual serviço você precisa:"

	replyAppointmentServiceRetry = "Desculpe, não entendi qual serviço você escolheu. Por favor, digite o número correspondente ao serviço desejado:"

	replyDateFormatRetry = "Por favor, informe a data no formato DD/MM/YYYY (exemplo: 25/04/2025):"

	replyTimeFormatRetry = "Por favor, informe o horário no formato HH:MM (exemplo: 14:30):"

	replyAskContactName = "Para que possamos entrar em contato, por favor me informe seu nome:"

	replyContactNameRetry = "Por favor, informe seu nome completo:"

	replyContactEmailRetry = "Por favor, informe um e-mail válido:"

	replyHumanAgentWaiting = "Um de nossos técnicos já foi notificado e entrará em contato nos próximos minutos. Deseja voltar ao menu principal enquanto aguarda?"

	replySystemError = "Desculpe, ocorreu um erro no sistema. Vamos recomeçar. "

	replyServiceNotFound = "Desculpe, não encontrei informações sobre este serviço."
)

func (e *Engine) mainMenu() string {
	return `
O que você gostaria de saber?

1️⃣ Informações sobre nossos serviços
2️⃣ Perguntas frequentes (FAQ)
3️⃣ Agendar um atendimento
4️⃣ Falar com um atendente humano
5️⃣ Deixar seus dados para contato

Digite o número da opção desejada ou escreva sua dúvida.`
}

func (e *Engine) serviceNames() string {
	var b strings.Builder
	for i, svc := range e.catalog.Services() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, svc.Name)
	}
	return b.String()
}

func (e *Engine) servicesList() string {
	return "\nOferecemos os seguintes serviços de suporte técnico:\n\n" +
		e.serviceNames() +
		"\n\nDigite o número do serviço para mais detalhes ou \"menu\" para voltar ao menu principal."
}

func (e *Engine) serviceDetails(serviceID string) string {
	svc, ok := e.catalog.ServiceByID(serviceID)
	if !ok {
		return replyServiceNotFound
	}
	return fmt.Sprintf(`
📌 %s

%s

💰 Faixa de preço: %s
⏱️ Tempo estimado: %s

Digite "agendar" para marcar este serviço ou "menu" para voltar ao menu principal.`,
		svc.Name, svc.Description, svc.PriceRange, svc.EstimatedTime)
}

func (e *Engine) faqList() string {
	var b strings.Builder
	b.WriteString("\nPerguntas frequentes:\n\n")
	for i, faq := range e.catalog.FAQs() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, faq.Question)
	}
	b.WriteString("\nDigite o número da pergunta para ver a resposta ou \"menu\" para voltar ao menu principal.")
	return b.String()
}

func (e *Engine) faqAnswer(idx int) string {
	faq, ok := e.catalog.FAQByIndex(idx)
	if !ok {
		return "Desculpe, não encontrei esta pergunta."
	}
	return "\n" + faq.Question + "\n\n" + faq.Answer + "\n\nPosso ajudar com mais alguma dúvida?"
}

func replyAppointmentDatePrompt(serviceName string) string {
	return fmt.Sprintf("Você escolheu agendar o serviço de %s. Por favor, me informe em qual data você gostaria de ser atendido (DD/MM/YYYY):", serviceName)
}

func replyBookingSummary(appt AppointmentInfo) string {
	return fmt.Sprintf(`Obrigado! Seu agendamento foi registrado com sucesso.

📝 Resumo do agendamento:
- Serviço: %s
- Data: %s
- Horário: %s
- Detalhes: %s

Um de nossos técnicos entrará em contato para confirmar o agendamento. Posso ajudar com mais alguma coisa?`,
		appt.Service, appt.Date, appt.Time, appt.Details)
}

func replyContactSummary(c Contact) string {
	return fmt.Sprintf(`Perfeito! Seus dados foram registrados:

- Nome: %s
- E-mail: %s

Um de nossos técnicos entrará em contato em breve. Enquanto isso, posso ajudar com mais alguma coisa?`,
		c.Name, c.Email)
}
