package exercise

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one detectable exercise: its catalog key, the name shown to
// users, and the spoken forms a transcriber might produce for it.
type Entry struct {
	Type     string   `yaml:"type" json:"type"`
	Display  string   `yaml:"display,omitempty" json:"display,omitempty"`
	Variants Variants `yaml:"variants" json:"variants"`
}

func (e Entry) displayName() string {
	if e.Display != "" {
		return e.Display
	}
	return e.Type
}

// Variants is an ordered list of spoken forms. In YAML it accepts
// either a single scalar or a sequence.
type Variants []string

func (v *Variants) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*v = Variants{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*v = list
	return nil
}

// Catalog is an ordered set of detectable exercises. Order matters only
// for tie-breaking: when two exercises match at the same timestamp the
// earlier entry wins.
type Catalog struct {
	Exercises []Entry `yaml:"exercises" json:"exercises"`
}

// ParseCatalog reads a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}
	if len(c.Exercises) == 0 {
		return nil, errors.New("exercise catalog is empty")
	}
	for i, e := range c.Exercises {
		if e.Type == "" {
			return nil, fmt.Errorf("exercise catalog entry %d: missing type", i)
		}
		if len(e.Variants) == 0 {
			return nil, fmt.Errorf("exercise catalog entry %q: no variants", e.Type)
		}
	}
	return &c, nil
}

// Default returns the built-in catalog covering standard barre and
// center exercises. Variant lists mix correct spellings with the
// mis-hearings observed in real transcriptions.
func Default() *Catalog {
	return &Catalog{Exercises: []Entry{
		{Type: "plie", Display: "Plié", Variants: Variants{
			"plie", "plié", "pliés", "plies", "plea", "please", "play",
		}},
		{Type: "tendu", Display: "Tendu", Variants: Variants{
			"tendu", "tendus", "tendue", "tend to", "tondo", "tan do",
		}},
		{Type: "degage", Display: "Dégagé", Variants: Variants{
			"degage", "dégagé", "degages", "dégagés", "day ga jay", "dig a j", "the ga j", "de gosh", "de ga",
		}},
		{Type: "rond_de_jambe", Display: "Rond de Jambe", Variants: Variants{
			"rond de jambe", "rondejambe", "ron de jon", "round de jambe", "rond", "ronds",
		}},
		{Type: "fondu", Display: "Fondu", Variants: Variants{
			"fondu", "fondus", "fondue", "fond do", "fun do", "fondo",
		}},
		{Type: "frappe", Display: "Frappé", Variants: Variants{
			"frappe", "frappé", "frappes", "frappés", "frap", "for pay", "frapeze",
		}},
		{Type: "adagio", Display: "Adagio", Variants: Variants{
			"adagio", "adage", "a dog", "a dojo",
		}},
		{Type: "grand_battement", Display: "Grand Battement", Variants: Variants{
			"grand battement", "grand batma", "gran batma", "grand batman", "grandma",
			"grand bat", "grand bop ma", "grand bopma", "battement", "batma", "bop ma",
		}},
		{Type: "releve", Display: "Relevé", Variants: Variants{
			"releve", "relevé", "relevés", "relay", "relay vay",
		}},
		{Type: "balance", Display: "Balancé", Variants: Variants{
			"balance", "balancé", "balances",
		}},
		{Type: "stretch", Display: "Stretch", Variants: Variants{
			"stretch", "stretches", "stretching",
		}},
		{Type: "pirouette", Display: "Pirouette", Variants: Variants{
			"pirouette", "pirouettes", "pirou", "peer wet",
		}},
		{Type: "waltz", Display: "Waltz", Variants: Variants{
			"waltz", "waltzes", "walts", "walls",
		}},
		{Type: "allegro", Display: "Allegro", Variants: Variants{
			"allegro", "a leg row", "allegra",
		}},
		{Type: "petit_allegro", Display: "Petit Allegro", Variants: Variants{
			"petit allegro", "petty allegro", "small allegro",
		}},
		{Type: "grand_allegro", Display: "Grand Allegro", Variants: Variants{
			"grand allegro", "gran allegro", "big allegro",
		}},
		{Type: "saute", Display: "Sauté", Variants: Variants{
			"saute", "sauté", "sautés", "so tay", "sautee",
		}},
		{Type: "changement", Display: "Changement", Variants: Variants{
			"changement", "changements", "sha ma", "change ma",
		}},
		{Type: "jete", Display: "Jeté", Variants: Variants{
			"jete", "jeté", "jetés", "jet", "jets", "je tay",
		}},
		{Type: "assemble", Display: "Assemblé", Variants: Variants{
			"assemble", "assemblé", "assembly", "a som blay",
		}},
		{Type: "glissade", Display: "Glissade", Variants: Variants{
			"glissade", "glissades", "gliss odd", "glee sod",
		}},
		{Type: "pas_de_bourree", Display: "Pas de Bourrée", Variants: Variants{
			"pas de bourree", "pas de bourrée", "pa de boo ray", "bourree", "bourrée", "boo ray",
		}},
		{Type: "tour", Display: "Tour", Variants: Variants{
			"tour", "tours", "turn", "turns",
		}},
		{Type: "reverence", Display: "Révérence", Variants: Variants{
			"reverence", "révérence", "reveronce",
		}},
	}}
}
