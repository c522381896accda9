package config

// Built-in keyword lists for the French classifieds sites. Config may
// override any of them; empty lists fall back to these.

// DefaultOnsiteHigh lists work that plainly requires physical presence:
// trades, childcare, food service, personal care, transport, household
// help. A single hit short-circuits the pre-filter.
func DefaultOnsiteHigh() []string {
	return []string{
		"ménage", "menage", "nettoyage", "repassage",
		"jardinage", "bricolage", "plomberie", "électricité",
		"déménagement", "demenagement", "livraison",
		"garde d'enfant", "baby", "babysitter", "nounou",
		"cuisine", "cuisinier", "chef", "restaur",
		"coiffure", "massage", "soins", "esthétique",
		"construction", "maçon", "peinture", "charpente",
		"mécanique", "mecanique", "réparation", "reparation",
		"chauffeur", "conducteur", "transport", "camion",
		"manuel", "physique", "sur place", "à domicile",
		"présence", "presence",
	}
}

func DefaultRemoteStrong() []string {
	return []string{
		"télétravail", "remote", "distance", "en ligne", "online",
		"visio", "zoom", "numérique", "digital",
	}
}

func DefaultOnsiteStrong() []string {
	return []string{
		"sur place", "physique", "présentiel", "déplacement",
		"maison", "domicile", "appartement", "bureau",
		"nettoyer", "réparer", "construire", "installer",
		"tournage", "plateau", "terrain", "chantier",
	}
}

func DefaultRemoteCategories() []string {
	return []string{
		"comptable", "comptabilité", "assistance comptable",
		"secrétariat", "télésecrétariat", "saisie",
		"rédaction", "traduction", "graphisme",
		"développement", "programmation", "web",
	}
}
