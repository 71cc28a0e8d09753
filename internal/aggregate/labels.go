package aggregate

import (
	"net/url"
	"strings"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
)

const (
	directReferrer  = "Direct"
	unknownTimezone = "Unknown"
)

// ReferrerLabel reduces a referrer URL to its host without a leading "www.".
// Values that are not absolute URLs are kept as their first 64 characters.
func ReferrerLabel(referrer string) string {
	if referrer == "" || referrer == "direct" {
		return directReferrer
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return truncate(referrer, 64)
	}

	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// UTMLabel composes "campaign | src:source | med:medium" from whichever parts
// are present. It returns "" when none are.
func UTMLabel(utm *domain.UTM) string {
	if utm == nil {
		return ""
	}

	campaign := firstNonEmpty(utm.Campaign, utm.UTMCampaign)
	source := firstNonEmpty(utm.Source, utm.UTMSource)
	medium := firstNonEmpty(utm.Medium, utm.UTMMedium)

	parts := make([]string, 0, 3)
	if campaign != "" {
		parts = append(parts, campaign)
	}
	if source != "" {
		parts = append(parts, "src:"+source)
	}
	if medium != "" {
		parts = append(parts, "med:"+medium)
	}
	return strings.Join(parts, " | ")
}

func LanguageLabel(language string) string {
	if language == "" {
		return domain.UnknownLabel
	}
	return strings.ToLower(truncate(language, 8))
}

func TimezoneLabel(timezone string) string {
	if timezone == "" {
		return unknownTimezone
	}
	return truncate(timezone, 32)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
