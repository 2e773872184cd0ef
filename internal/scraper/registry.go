package scraper

import (
	"sort"
	"strings"
)

var registry = map[string]Scraper{}

func Register(s Scraper) {
	registry[strings.ToLower(s.Name())] = s
}

func Get(name string) (Scraper, bool) {
	s, ok := registry[strings.ToLower(name)]
	return s, ok
}

// ForURL returns the first registered scraper whose site matches target.
func ForURL(target string) (Scraper, bool) {
	for _, name := range Names() {
		if s := registry[name]; s.Matches(target) {
			return s, true
		}
	}
	return nil, false
}

// Names lists registered scrapers in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
