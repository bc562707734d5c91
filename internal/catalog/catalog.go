package catalog

import "strings"

// Service is one entry of the static service catalog.
type Service struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceRange    string `json:"price_range"`
	EstimatedTime string `json:"estimated_time"`
}

// FAQ is one question/answer pair of the static FAQ catalog.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Catalog bundles the read-only service and FAQ lists. It is safe to share
// a single instance across conversations.
type Catalog struct {
	services []Service
	faqs     []FAQ
	keywords map[string][]string // service id -> hand-authored synonyms
}

// New builds a catalog from explicit lists. Keyword synonyms map a service
// id to substrings that should match it in free text.
func New(services []Service, faqs []FAQ, keywords map[string][]string) *Catalog {
	if keywords == nil {
		keywords = map[string][]string{}
	}
	return &Catalog{services: services, faqs: faqs, keywords: keywords}
}

// Services returns the service list in catalog order.
func (c *Catalog) Services() []Service { return c.services }

// FAQs returns the FAQ list in catalog order.
func (c *Catalog) FAQs() []FAQ { return c.faqs }

// ServiceByIndex returns the service at the zero-based index.
func (c *Catalog) ServiceByIndex(i int) (Service, bool) {
	if i < 0 || i >= len(c.services) {
		return Service{}, false
	}
	return c.services[i], true
}

// ServiceByID looks a service up by its id.
func (c *Catalog) ServiceByID(id string) (Service, bool) {
	for _, s := range c.services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// FAQByIndex returns the FAQ at the zero-based index.
func (c *Catalog) FAQByIndex(i int) (FAQ, bool) {
	if i < 0 || i >= len(c.faqs) {
		return FAQ{}, false
	}
	return c.faqs[i], true
}

// MatchService finds the first service whose name is contained in the input
// or whose keyword synonyms match. Catalog order is the tie-break. Input is
// expected lowercased.
func (c *Catalog) MatchService(lowerInput string) (Service, bool) {
	for _, s := range c.services {
		if strings.Contains(lowerInput, strings.ToLower(s.Name)) {
			return s, true
		}
		for _, kw := range c.keywords[s.ID] {
			if strings.Contains(lowerInput, kw) {
				return s, true
			}
		}
	}
	return Service{}, false
}

// MatchServiceByName matches only on name containment, without keyword
// synonyms. Used by the appointment service-choice step.
func (c *Catalog) MatchServiceByName(lowerInput string) (Service, bool) {
	for _, s := range c.services {
		if strings.Contains(lowerInput, strings.ToLower(s.Name)) {
			return s, true
		}
	}
	return Service{}, false
}

// MatchFAQ finds the first FAQ whose question contains the input, or whose
// leading words are contained in the input. Returns the zero-based index.
func (c *Catalog) MatchFAQ(lowerInput string) (int, bool) {
	for i, f := range c.faqs {
		q := strings.ToLower(f.Question)
		if strings.Contains(q, lowerInput) {
			return i, true
		}
		words := strings.Fields(q)
		if len(words) > 3 {
			words = words[:3]
		}
		if prefix := strings.Join(words, " "); prefix != "" && strings.Contains(lowerInput, prefix) {
			return i, true
		}
	}
	return 0, false
}
