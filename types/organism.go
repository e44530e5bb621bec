package types

import (
	"fmt"
	"strings"
)

// Organism is the organism group the prediction models are trained for.
// The value is the token the tool accepts after -t.
type Organism string

const (
	// OrganismEukaryote selects the eukaryote models.
	OrganismEukaryote Organism = "euk"
	// OrganismGramPositive selects the gram-positive bacteria models.
	OrganismGramPositive Organism = "gram+"
	// OrganismGramNegative selects the gram-negative bacteria models.
	OrganismGramNegative Organism = "gram-"
)

var organismAliases = map[string]Organism{
	"euk":           OrganismEukaryote,
	"eukaryote":     OrganismEukaryote,
	"gram+":         OrganismGramPositive,
	"gram-positive": OrganismGramPositive,
	"gram-":         OrganismGramNegative,
	"gram-negative": OrganismGramNegative,
}

// ParseOrganism parses a tool token (euk, gram+, gram-) or its long name.
// Matching is case-insensitive.
func ParseOrganism(s string) (Organism, error) {
	if o, ok := organismAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return o, nil
	}
	return "", &ConfigurationError{
		Msg: fmt.Sprintf("organism argument %q is not one of %s", s, OrganismChoices()),
	}
}

// Valid reports whether o is one of the enumerated organism groups.
func (o Organism) Valid() bool {
	switch o {
	case OrganismEukaryote, OrganismGramPositive, OrganismGramNegative:
		return true
	}
	return false
}

// Flag returns the value passed to the tool's -t option.
func (o Organism) Flag() string { return string(o) }

// Name returns the long, path-safe name of the organism group.
func (o Organism) Name() string {
	switch o {
	case OrganismEukaryote:
		return "eukaryote"
	case OrganismGramPositive:
		return "gram-positive"
	case OrganismGramNegative:
		return "gram-negative"
	default:
		return string(o)
	}
}

// OrganismChoices lists the accepted tool tokens for diagnostics.
func OrganismChoices() string {
	return "euk, gram+ or gram-"
}
