package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurida/helpline/pkg/domain"
)

func TestLoadScenarios(t *testing.T) {
	book, err := LoadScenarios()
	require.NoError(t, err)

	for _, problemType := range []string{"internet_down", "slow_speed", "wifi_issue", "tv_issue"} {
		sc := book.ForProblemType(problemType)
		require.NotNil(t, sc, "no scenario for %s", problemType)
		assert.NotEmpty(t, sc.Steps)
		for _, step := range sc.Steps {
			assert.NotEmpty(t, step.ID)
			assert.NotEmpty(t, step.Text(domain.LanguageLT))
			assert.NotEmpty(t, step.Text(domain.LanguageEN))
		}
	}
}

func TestForProblemTypeFallsBackToGeneric(t *testing.T) {
	book, err := LoadScenarios()
	require.NoError(t, err)

	sc := book.ForProblemType("something_new")
	require.NotNil(t, sc)
	assert.Equal(t, "generic", sc.ID)
}

func TestScenarioStepLookup(t *testing.T) {
	book, err := LoadScenarios()
	require.NoError(t, err)

	sc := book.Get("internet_down")
	require.NotNil(t, sc)
	assert.NotNil(t, sc.Step("reboot_router"))
	assert.Nil(t, sc.Step("absent"))
}

func TestNewScenarioBookValidation(t *testing.T) {
	_, err := NewScenarioBook(nil)
	assert.Error(t, err)

	_, err = NewScenarioBook([]Scenario{
		{ID: "a", Steps: []ScenarioStep{{ID: "s1", LT: "x"}}},
		{ID: "a", Steps: []ScenarioStep{{ID: "s1", LT: "x"}}},
	})
	assert.Error(t, err, "duplicate ids must be rejected")

	_, err = NewScenarioBook([]Scenario{{ID: "a"}})
	assert.Error(t, err, "scenarios without steps must be rejected")
}

func TestStepTextFallsBackToLithuanian(t *testing.T) {
	step := ScenarioStep{ID: "s", LT: "lietuviskai"}
	assert.Equal(t, "lietuviskai", step.Text(domain.LanguageEN))
}
