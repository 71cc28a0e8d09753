package detector

import "strings"

type Agent string

const (
	AgentHuman     Agent = "human"
	AgentCrawler   Agent = "crawler"
	AgentMalicious Agent = "malicious"
)

// FriendlyCrawlers are search and social preview fetchers. They are counted
// separately from people and never excluded silently.
var FriendlyCrawlers = []string{
	"googlebot",
	"bingbot",
	"duckduckbot",
	"baiduspider",
	"yandexbot",
	"sogou",
	"slurp",
	"facebookexternalhit",
	"linkedinbot",
	"twitterbot",
	"slackbot",
	"discordbot",
	"whatsapp",
	"telegrambot",
}

// MaliciousAgents are scrapers, SEO harvesters, HTTP libraries and headless
// browsers.
var MaliciousAgents = []string{
	"ahrefsbot",
	"semrushbot",
	"mj12bot",
	"dotbot",
	"crawler4j",
	"python-requests",
	"python-urllib",
	"scrapy",
	"httpclient",
	"okhttp",
	"curl/",
	"wget",
	"libwww",
	"headless",
	"phantomjs",
	"selenium",
	"webdriver",
	"chrome-lighthouse",
	"gtmetrix",
	"screaming frog",
	"screamingfrog",
	"bingpreview",
	"petalbot",
	"serpstatbot",
	"zoominfobot",
	"dataforseobot",
}

// SuspiciousTokens catch automated clients missing from the explicit lists.
var SuspiciousTokens = []string{
	"bot",
	"crawl",
	"spider",
	"scraper",
	"dataminr",
	"fetch",
	"monitor",
	"check",
}

// Rules is the serialisable form of the classifier, served to client-side
// pre-filters so both sides evaluate the same lists in the same order.
type Rules struct {
	FriendlyCrawlers []string `json:"friendlyCrawlers"`
	MaliciousAgents  []string `json:"maliciousAgents"`
	SuspiciousTokens []string `json:"suspiciousTokens"`
}

func ClassifierRules() Rules {
	return Rules{
		FriendlyCrawlers: append([]string(nil), FriendlyCrawlers...),
		MaliciousAgents:  append([]string(nil), MaliciousAgents...),
		SuspiciousTokens: append([]string(nil), SuspiciousTokens...),
	}
}

// ClassifyAgent tags a user agent. Rule order matters: a friendly crawler
// whose name contains "bot" must match the allow-list before the heuristics.
func ClassifyAgent(userAgent string) Agent {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" || ua == "unknown" {
		return AgentMalicious
	}

	if containsAny(ua, FriendlyCrawlers) {
		return AgentCrawler
	}

	if containsAny(ua, MaliciousAgents) {
		return AgentMalicious
	}

	if containsAny(ua, SuspiciousTokens) {
		return AgentMalicious
	}

	return AgentHuman
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
