package catalog

// Default returns the HelpTech service and FAQ catalogs. Loaded once at
// startup and read-only for the lifetime of the process.
func Default() *Catalog {
	return New(defaultServices, defaultFAQs, defaultKeywords)
}

var defaultServices = []Service{
	{
		ID:            "formatting",
		Name:          "Formatação de PC",
		Description:   "Reinstalação do sistema operacional, drivers e programas básicos. Inclui backup de dados (quando possível) e configuração inicial.",
		PriceRange:    "R$100 - R$200",
		EstimatedTime: "24h - 48h",
	},
	{
		ID:            "virus",
		Name:          "Remoção de Vírus",
		Description:   "Varredura completa do sistema, eliminação de malwares, vírus, spywares e outros programas maliciosos. Inclui otimização do sistema.",
		PriceRange:    "R$80 - R$150",
		EstimatedTime: "24h - 72h",
	},
	{
		ID:            "network",
		Name:          "Configuração de Rede",
		Description:   "Instalação e configuração de roteadores, repetidores, switches e demais equipamentos de rede. Otimização de sinal Wi-Fi e solução de problemas de conectividade.",
		PriceRange:    "R$70 - R$180",
		EstimatedTime: "1h - 4h",
	},
	{
		ID:            "hardware",
		Name:          "Reparo de Hardware",
		Description:   "Diagnóstico e conserto de componentes de hardware danificados. Substituição de peças, upgrade de componentes e limpeza interna.",
		PriceRange:    "R$100 - R$500+",
		EstimatedTime: "2 - 5 dias úteis",
	},
}

var defaultKeywords = map[string][]string{
	"formatting": {"format", "reinstal"},
	"virus":      {"vírus", "malware"},
	"network":    {"rede", "wifi", "internet"},
	"hardware":   {"quebr", "consert", "peça"},
}

var defaultFAQs = []FAQ{
	{
		Question: "Quais são os serviços oferecidos pela HelpTech?",
		Answer:   "Oferecemos diversos serviços de suporte técnico, incluindo formatação de PC, remoção de vírus, configuração de rede e reparo de hardware para computadores e dispositivos móveis.",
	},
	{
		Question: "Quanto custa uma formatação de PC?",
		Answer:   "O preço da formatação de PC varia de acordo com o tipo de serviço necessário. Uma formatação básica com instalação do Windows custa a partir de R$100. Para um orçamento personalizado, informe mais detalhes sobre seu equipamento.",
	},
	{
		Question: "Como posso agendar um atendimento?",
		Answer:   "Você pode agendar um atendimento diretamente pelo nosso chat, informando o tipo de serviço, data e horário desejados. Também aceitamos agendamentos por telefone ou WhatsApp.",
	},
	{
		Question: "Vocês atendem em domicílio?",
		Answer:   "Sim, oferecemos atendimento em domicílio para maior comodidade. O valor da visita técnica varia conforme a região e é combinado no momento do agendamento.",
	},
	{
		Question: "Qual o prazo para conclusão dos serviços?",
		Answer:   "O prazo varia de acordo com o serviço. Formatações simples geralmente são concluídas em 24h, enquanto reparos de hardware podem levar de 2 a 5 dias úteis, dependendo da disponibilidade de peças.",
	},
	{
		Question: "Vocês oferecem garantia?",
		Answer:   "Sim, todos os nossos serviços possuem garantia. Serviços de software têm garantia de 30 dias e reparos de hardware de 90 dias.",
	},
	{
		Question: "Meu computador está lento, o que pode ser?",
		Answer:   "Computadores lentos podem ter diversas causas, como vírus, excesso de programas instalados, pouco espaço em disco ou hardware desatualizado. Podemos realizar um diagnóstico completo para identificar o problema específico.",
	},
	{
		Question: "Vocês recuperam dados de HD com defeito?",
		Answer:   "Sim, oferecemos serviço de recuperação de dados para HDs com defeito. A taxa de sucesso depende do tipo e gravidade do problema, mas temos alta taxa de recuperação na maioria dos casos.",
	},
}
