package advisory

type adviceKey struct {
	pollutant Pollutant
	band      Band
}

// NeutralAdvisory is returned when no advice exists for a pollutant/band pair.
var NeutralAdvisory = Advisory{
	HealthMessage:  "No health information available.",
	DiseaseRisk:    "Data not available.",
	Recommendation: "No solution found.",
}

var adviceTable = map[adviceKey]Advisory{
	// PM2.5
	{PollutantPM25, BandGood}: {
		HealthMessage:  "PM2.5 levels are good and safe.",
		DiseaseRisk:    "No significant health risks.",
		Recommendation: "Enjoy fresh outdoor air.",
	},
	{PollutantPM25, BandModerate}: {
		HealthMessage:  "PM2.5 levels are moderate; may cause asthma and lung irritation.",
		DiseaseRisk:    "Mild risk of asthma or lung irritation.",
		Recommendation: "Use a mask outdoors and avoid heavy exercise outside.",
	},
	{PollutantPM25, BandUnhealthySensitive}: {
		HealthMessage:  "PM2.5 levels are unhealthy for sensitive groups; decreased lung function possible.",
		DiseaseRisk:    "Risk of reduced lung function in sensitive individuals.",
		Recommendation: "Use an air purifier and avoid outdoor exposure.",
	},
	{PollutantPM25, BandHazardous}: {
		HealthMessage:  "PM2.5 levels are hazardous; risk of heart attacks and lung cancer increases.",
		DiseaseRisk:    "High risk of heart disease and lung cancer.",
		Recommendation: "Wear a high-quality mask, stay indoors, and use air purifiers.",
	},

	// PM10: the two upper bands share disease risk and recommendation.
	{PollutantPM10, BandGood}: {
		HealthMessage:  "PM10 levels are good and safe.",
		DiseaseRisk:    "No major health concern.",
		Recommendation: "Keep indoor air ventilated.",
	},
	{PollutantPM10, BandModerate}: {
		HealthMessage:  "PM10 levels are moderate; may cause asthma and respiratory symptoms.",
		DiseaseRisk:    "Risk of allergies and respiratory issues.",
		Recommendation: "Use dust filters and avoid outdoor activity.",
	},
	{PollutantPM10, BandUnhealthySensitive}: {
		HealthMessage:  "PM10 levels are unhealthy for sensitive groups; decreased lung function possible.",
		DiseaseRisk:    "Higher risk of lung disease and infections.",
		Recommendation: "Install purifiers and avoid polluted areas.",
	},
	{PollutantPM10, BandHazardous}: {
		HealthMessage:  "PM10 levels are hazardous; increased risk of lung diseases.",
		DiseaseRisk:    "Higher risk of lung disease and infections.",
		Recommendation: "Install purifiers and avoid polluted areas.",
	},

	// CO
	{PollutantCO, BandGood}: {
		HealthMessage:  "CO levels are good and safe.",
		DiseaseRisk:    "No serious health threat.",
		Recommendation: "Ensure proper ventilation indoors.",
	},
	{PollutantCO, BandModerate}: {
		HealthMessage:  "High CO exposure may cause headaches and dizziness.",
		DiseaseRisk:    "Can cause headache and dizziness.",
		Recommendation: "Avoid exposure to smoke or car exhausts.",
	},
	{PollutantCO, BandHazardous}: {
		HealthMessage:  "Very high CO levels; risk of serious cardiovascular effects.",
		DiseaseRisk:    "Risk of cardiovascular and neurological effects.",
		Recommendation: "Seek medical attention and increase indoor air flow.",
	},

	// NO2
	{PollutantNO2, BandGood}: {
		HealthMessage:  "NO2 levels are good and safe.",
		DiseaseRisk:    "Safe exposure level.",
		Recommendation: "No specific actions needed.",
	},
	{PollutantNO2, BandModerate}: {
		HealthMessage:  "NO2 levels may cause respiratory inflammation and reduce lung function.",
		DiseaseRisk:    "Risk of respiratory irritation.",
		Recommendation: "Avoid industrial areas and use air filters.",
	},
	{PollutantNO2, BandHazardous}: {
		HealthMessage:  "High NO2 exposure increases risk of respiratory diseases and asthma.",
		DiseaseRisk:    "High risk of asthma and chronic lung diseases.",
		Recommendation: "Stay indoors and use advanced air filtration systems.",
	},
}

// Advise returns the advisory for a pollutant band.
// Unknown combinations resolve to NeutralAdvisory.
func Advise(p Pollutant, b Band) Advisory {
	if a, ok := adviceTable[adviceKey{pollutant: p, band: b}]; ok {
		return a
	}
	return NeutralAdvisory
}
