// Package airbot answers short air quality questions by keyword.
package airbot

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/breatheroute/airtracker/internal/advisory"
)

// Prefix starts every answer.
const Prefix = "Sure I Tell You:"

// Topic identifies which rule answered a question.
type Topic string

const (
	TopicPM25    Topic = "PM2.5"
	TopicPM10    Topic = "PM10"
	TopicCO      Topic = "CO"
	TopicNO2     Topic = "NO2"
	TopicAQI     Topic = "AQI"
	TopicPlants  Topic = "PLANTS"
	TopicSafety  Topic = "SAFETY"
	TopicGeneral Topic = "GENERAL"
)

// Topics lists every topic in rule order, the fallback last.
var Topics = []Topic{TopicPM25, TopicPM10, TopicCO, TopicNO2, TopicAQI, TopicPlants, TopicSafety, TopicGeneral}

// Answer is the bot's reply to a question.
type Answer struct {
	Topic Topic
	Text  string
}

type rule struct {
	topic Topic
	match func(q string) bool
	reply func() string
}

// "co" only counts as a whole word so "cooking" or "co2" do not match.
var coWord = regexp.MustCompile(`\bco\b`)

func contains(s string) func(string) bool {
	return func(q string) bool { return strings.Contains(q, s) }
}

func fixed(s string) func() string {
	return func() string { return s }
}

// Rules are evaluated in order; the first match wins.
var rules = []rule{
	{TopicPM25, contains("pm2.5"), safeLimit(advisory.PollutantPM25, "below")},
	{TopicPM10, contains("pm10"), safeLimit(advisory.PollutantPM10, "under")},
	{TopicCO, coWord.MatchString, safeLimit(advisory.PollutantCO, "below")},
	{TopicNO2, contains("no2"), safeLimit(advisory.PollutantNO2, "when under")},
	{TopicAQI, contains("aqi"), fixed("AQI means Air Quality Index.")},
	{TopicPlants, contains("plant"), fixed("Try Areca Palm, Snake Plant, or Money Plant.")},
	{TopicSafety, contains("safe"), fixed("Stay indoors and wear masks during high AQI.")},
}

const fallback = "Monitor AQI and limit outdoor activity in high pollution."

// safeLimit reads the upper bound of the pollutant's Good band from the threshold table.
func safeLimit(p advisory.Pollutant, phrase string) func() string {
	return func() string {
		th, _ := advisory.ThresholdFor(p)
		limit := strconv.FormatFloat(th.SafeLimit(), 'f', -1, 64)
		return string(p) + " is safe " + phrase + " " + limit + " micrograms per cubic meter."
	}
}

// Ask answers a free-form question.
func Ask(question string) Answer {
	q := strings.ToLower(question)
	for _, r := range rules {
		if r.match(q) {
			return Answer{Topic: r.topic, Text: Prefix + " " + r.reply()}
		}
	}
	return Answer{Topic: TopicGeneral, Text: Prefix + " " + fallback}
}
