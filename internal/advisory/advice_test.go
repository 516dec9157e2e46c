package advisory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breatheroute/airtracker/internal/advisory"
)

func TestAdvise_EveryReachablePairHasAdvice(t *testing.T) {
	for _, th := range advisory.Thresholds() {
		for _, bp := range th.Breakpoints {
			a := advisory.Advise(th.Pollutant, bp.Band)
			assert.NotEqual(t, advisory.NeutralAdvisory, a, "%s/%s", th.Pollutant, bp.Band)
			assert.NotEmpty(t, a.HealthMessage)
			assert.NotEmpty(t, a.DiseaseRisk)
			assert.NotEmpty(t, a.Recommendation)
		}
	}
}

func TestAdvise_Text(t *testing.T) {
	a := advisory.Advise(advisory.PollutantPM25, advisory.BandGood)
	assert.Equal(t, "PM2.5 levels are good and safe.", a.HealthMessage)
	assert.Equal(t, "No significant health risks.", a.DiseaseRisk)
	assert.Equal(t, "Enjoy fresh outdoor air.", a.Recommendation)

	a = advisory.Advise(advisory.PollutantCO, advisory.BandModerate)
	assert.Equal(t, "High CO exposure may cause headaches and dizziness.", a.HealthMessage)
}

func TestAdvise_PM10UpperBandsShareAction(t *testing.T) {
	sensitive := advisory.Advise(advisory.PollutantPM10, advisory.BandUnhealthySensitive)
	hazardous := advisory.Advise(advisory.PollutantPM10, advisory.BandHazardous)

	assert.NotEqual(t, sensitive.HealthMessage, hazardous.HealthMessage)
	assert.Equal(t, sensitive.DiseaseRisk, hazardous.DiseaseRisk)
	assert.Equal(t, sensitive.Recommendation, hazardous.Recommendation)
}

func TestAdvise_UnknownFallsBackToNeutral(t *testing.T) {
	assert.Equal(t, advisory.NeutralAdvisory, advisory.Advise("O3", advisory.BandGood))
	assert.Equal(t, advisory.NeutralAdvisory, advisory.Advise(advisory.PollutantNO2, advisory.BandUnhealthySensitive))
	assert.Equal(t, advisory.NeutralAdvisory, advisory.Advise(advisory.PollutantPM25, advisory.BandUnknown))
}
