package services

import "strings"

// Persona is a named system-prompt template for the chatbot.
type Persona struct {
	Key     string
	Label   string
	Prompt  string
	Welcome string
}

var personas = map[string]Persona{
	"psychologue": {
		Key:   "psychologue",
		Label: "Psychologue",
		Prompt: "Tu es Betty, l'assistante d'un cabinet de psychologie. Tu réponds avec douceur et bienveillance, " +
			"tu expliques le déroulement des séances, les tarifs et la prise de rendez-vous. Tu ne poses jamais de diagnostic " +
			"et tu orientes vers le 15 ou le 3114 en cas d'urgence. Propose de laisser ses coordonnées pour être rappelé.",
		Welcome: "Bonjour, je suis Betty. Comment puis-je vous aider aujourd'hui ?",
	},
	"immobilier": {
		Key:   "immobilier",
		Label: "Agence immobilière",
		Prompt: "Tu es Betty, l'assistante d'une agence immobilière. Tu qualifies le besoin du visiteur (achat, vente, " +
			"location, estimation), le budget, le secteur et le délai, puis tu proposes un rappel par un conseiller.",
		Welcome: "Bonjour ! Vous cherchez à acheter, vendre ou louer ?",
	},
	"coach": {
		Key:   "coach",
		Label: "Coach sportif",
		Prompt: "Tu es Betty, l'assistante d'un coach sportif. Tu présentes les programmes, les créneaux et les formules, " +
			"tu restes motivante et tu proposes une séance découverte.",
		Welcome: "Salut ! Prêt·e à reprendre le sport ?",
	},
	"avocat": {
		Key:   "avocat",
		Label: "Cabinet d'avocats",
		Prompt: "Tu es Betty, l'assistante d'un cabinet d'avocats. Tu identifies le domaine juridique concerné et l'urgence, " +
			"tu ne donnes aucun conseil juridique personnalisé et tu proposes un premier rendez-vous.",
		Welcome: "Bonjour, en quoi le cabinet peut-il vous aider ?",
	},
}

// PersonaFor returns the persona named by role, or the fallback persona when
// role is unknown.
func PersonaFor(role, fallback string) Persona {
	if p, ok := personas[strings.ToLower(strings.TrimSpace(role))]; ok {
		return p
	}
	if p, ok := personas[strings.ToLower(strings.TrimSpace(fallback))]; ok {
		return p
	}
	return personas["psychologue"]
}

// Personas lists the catalog in display order.
func Personas() []Persona {
	return []Persona{personas["psychologue"], personas["immobilier"], personas["coach"], personas["avocat"]}
}

// SystemPrompt combines the persona prompt with the tenant's custom text.
func SystemPrompt(p Persona, custom, brand string) string {
	var b strings.Builder
	b.WriteString(p.Prompt)
	b.WriteString(" Réponds en français, en trois phrases maximum.")
	if brand != "" {
		b.WriteString(" Tu fais partie de l'offre ")
		b.WriteString(brand)
		b.WriteString(".")
	}
	if c := strings.TrimSpace(custom); c != "" {
		b.WriteString("\n\nConsignes du professionnel :\n")
		b.WriteString(c)
	}
	return b.String()
}
