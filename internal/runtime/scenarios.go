package runtime

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aurida/helpline/pkg/domain"
)

//go:embed scenarios/scenarios.yaml
var scenariosYAML []byte

// ScenarioStep is one troubleshooting instruction, localized per language.
type ScenarioStep struct {
	ID string `yaml:"id"`
	LT string `yaml:"lt"`
	EN string `yaml:"en"`
}

// Text returns the instruction in the requested language.
func (st ScenarioStep) Text(lang domain.Language) string {
	if lang == domain.LanguageEN && st.EN != "" {
		return st.EN
	}
	return st.LT
}

// Scenario is an ordered troubleshooting script for a family of problems.
type Scenario struct {
	ID           string         `yaml:"id"`
	ProblemTypes []string       `yaml:"problem_types"`
	Steps        []ScenarioStep `yaml:"steps"`
}

// Step returns the step with the given id, or nil.
func (sc *Scenario) Step(id string) *ScenarioStep {
	for i := range sc.Steps {
		if sc.Steps[i].ID == id {
			return &sc.Steps[i]
		}
	}
	return nil
}

// ScenarioBook indexes scenarios by id and by problem type.
type ScenarioBook struct {
	byID     map[string]*Scenario
	byType   map[string]*Scenario
	fallback *Scenario
}

// NewScenarioBook builds the indexes. The scenario with id "generic" (or the
// first one, failing that) becomes the fallback for unknown problem types.
func NewScenarioBook(scenarios []Scenario) (*ScenarioBook, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined")
	}

	book := &ScenarioBook{
		byID:   make(map[string]*Scenario, len(scenarios)),
		byType: make(map[string]*Scenario),
	}
	for i := range scenarios {
		sc := &scenarios[i]
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario %d has no id", i)
		}
		if len(sc.Steps) == 0 {
			return nil, fmt.Errorf("scenario %q has no steps", sc.ID)
		}
		if _, dup := book.byID[sc.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		book.byID[sc.ID] = sc
		for _, pt := range sc.ProblemTypes {
			book.byType[pt] = sc
		}
		if sc.ID == "generic" {
			book.fallback = sc
		}
	}
	if book.fallback == nil {
		book.fallback = &scenarios[0]
	}
	return book, nil
}

// LoadScenarios parses the embedded scenario file.
func LoadScenarios() (*ScenarioBook, error) {
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(scenariosYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	return NewScenarioBook(doc.Scenarios)
}

// Get returns the scenario with the given id, or nil.
func (b *ScenarioBook) Get(id string) *Scenario {
	return b.byID[id]
}

// ForProblemType returns the scenario handling the problem type, falling
// back to the generic scenario.
func (b *ScenarioBook) ForProblemType(problemType string) *Scenario {
	if sc, ok := b.byType[problemType]; ok {
		return sc
	}
	return b.fallback
}
