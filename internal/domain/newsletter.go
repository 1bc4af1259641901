package domain

import "strings"

// Article is the unit of content flowing through the pipeline. Content stays
// empty until the full page has been scraped.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

// Valid reports whether the article is complete enough to translate and send.
func (a Article) Valid() bool {
	return a.Title != "" && a.Content != "" && a.Link != ""
}

// NewsSource describes a single site with the CSS selectors needed to pull
// headlines, links, and article bodies out of its markup. Country is an
// Alpha-2 code used to match subscriber groups to a source.
type NewsSource struct {
	Type            string
	URL             string
	TitleSelector   string
	LinkSelector    string
	ContentSelector string
	Country         string
}

// Subscriber is a newsletter recipient. Email is the identity key; Language
// is ISO 639-1 and CountryOfResidence is Alpha-2.
type Subscriber struct {
	Email              string `json:"email"`
	Name               string `json:"name"`
	Bio                string `json:"bio,omitempty"`
	Language           string `json:"language"`
	CountryOfResidence string `json:"countryOfResidence"`
}

// SubscriberGroups buckets subscribers by country of residence, then by
// language. Built fresh for every orchestrator run and discarded after.
type SubscriberGroups map[string]map[string][]Subscriber

// GroupSubscribers places every subscriber in exactly one (country, language)
// bucket determined solely by their own two fields.
func GroupSubscribers(subscribers []Subscriber) SubscriberGroups {
	groups := SubscriberGroups{}
	for _, sub := range subscribers {
		country := strings.TrimSpace(sub.CountryOfResidence)
		language := strings.TrimSpace(sub.Language)

		byLanguage, ok := groups[country]
		if !ok {
			byLanguage = map[string][]Subscriber{}
			groups[country] = byLanguage
		}
		byLanguage[language] = append(byLanguage[language], sub)
	}
	return groups
}

// Total counts subscribers across all buckets.
func (g SubscriberGroups) Total() int {
	total := 0
	for _, byLanguage := range g {
		for _, subs := range byLanguage {
			total += len(subs)
		}
	}
	return total
}

// EmailMessage is a rendered outbound email handed to the mail transport.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}
