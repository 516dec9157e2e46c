// Package narration presents reports as spoken scripts and tracks which
// sessions have already heard the narration for their current city.
package narration

// Fixed phrases used by the console and web front ends.
const (
	ConsoleGreeting = "Hello! I am a Real-Time Air Quality Tracker."
	CityPrompt      = "Please enter your city name:"
	WebGreeting     = "Hello Human! I'm your Real-Time Air Quality Tracker. " +
		"Please enter your city to get the air quality report."
	FetchFailure = "Sorry! I could not fetch the data."
)
