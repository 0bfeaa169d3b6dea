package invite

import (
	"slices"
	"strings"
)

// PartyTypes are the predefined occasions offered by the wizard.
var PartyTypes = []string{
	"Birthday Party",
	"Dinner Party",
	"Brunch Party",
	"Night Party",
	"Pool Party",
	"Graduation Party",
	"Baby Shower",
	"Housewarming",
}

// ThemeGroup is a named set of vibe tags.
type ThemeGroup struct {
	Name string
	Tags []string
}

var ThemeGroups = []ThemeGroup{
	{Name: "Colors", Tags: []string{"Pastel", "Neon", "Monochrome", "Gold & Glitter"}},
	{Name: "Moods", Tags: []string{"Romantic", "Spooky", "Classy", "Chill", "Dreamy", "Playful"}},
	{Name: "Music", Tags: []string{"Lo-fi", "Dance Pop", "Classical", "Indie"}},
	{Name: "Style", Tags: []string{"Cottagecore", "Retro", "Sci-fi", "Fairytale", "Minimalist"}},
}

// NameSuggestions are offered when the host asks for ideas.
var NameSuggestions = []string{
	"XXX's Birthday Picnic",
	"Friday Night Karaoke",
	"Team Offsite 2025",
	"Friendsgiving Potluck",
	"Game Night Extravaganza",
}

// MaxNameLength bounds the event title.
const MaxNameLength = 100

// AddTag appends a trimmed custom tag unless it is blank or already present.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(tags, tag) {
		return tags
	}
	return append(tags, tag)
}

// ToggleTag adds tag when absent and removes it when present.
func ToggleTag(tags []string, tag string) []string {
	if i := slices.Index(tags, tag); i >= 0 {
		return slices.Delete(slices.Clone(tags), i, i+1)
	}
	return append(slices.Clone(tags), tag)
}

// ThemeHint suggests a party type that fits the chosen vibe, or "".
func ThemeHint(tags []string) string {
	switch {
	case slices.Contains(tags, "Romantic") && slices.Contains(tags, "Red"):
		return "Sounds like you're going for a Valentine's Day vibe! Want to switch your Party Type?"
	case slices.Contains(tags, "Spooky"):
		return "Is this a Halloween party? You might want to update your Party Type!"
	}
	return ""
}
