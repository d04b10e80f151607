package models

// Scenario selects the server-side ranking strategy.
type Scenario string

const (
	ScenarioDefault    Scenario = ""
	ScenarioTFIDF3     Scenario = "3"
	ScenarioTFIDF5     Scenario = "5"
	ScenarioTFIDF10    Scenario = "10"
	ScenarioNoTFIDF    Scenario = "0"
	ScenarioNoSemantic Scenario = "-1"
)

// DefaultWireScenario is what the server applies when no scenario is chosen.
const DefaultWireScenario = ScenarioTFIDF3

var scenarioLabels = map[Scenario]string{
	ScenarioTFIDF3:     "3 Terms TF-IDF",
	ScenarioTFIDF5:     "5 Terms TF-IDF",
	ScenarioTFIDF10:    "10 Terms TF-IDF",
	ScenarioNoTFIDF:    "Without TF-IDF",
	ScenarioNoSemantic: "Without Semantic",
}

// Scenarios lists the selectable strategies in display order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioTFIDF3, ScenarioTFIDF5, ScenarioTFIDF10, ScenarioNoTFIDF, ScenarioNoSemantic}
}

// ParseScenario normalizes unknown values to the server default.
func ParseScenario(s string) Scenario {
	sc := Scenario(s)
	if _, ok := scenarioLabels[sc]; ok {
		return sc
	}
	return ScenarioDefault
}

func (s Scenario) Label() string {
	if l, ok := scenarioLabels[s]; ok {
		return l
	}
	return scenarioLabels[DefaultWireScenario]
}

// Wire is the value sent to the search endpoint.
func (s Scenario) Wire() string {
	if s == ScenarioDefault {
		return string(DefaultWireScenario)
	}
	return string(s)
}
