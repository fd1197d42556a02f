package usecases

import (
	"strings"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// SectionMarkers are the emoji that open each section of a basic narrative.
// The warning sign is matched with or without its variation selector.
var SectionMarkers = []string{"🌍", "👥", "🏢", "🚀", "⚠", "💰", "🎯", "📊"}

// PremiumMarkers additionally split on the executive-summary marker.
var PremiumMarkers = append([]string{"📋"}, SectionMarkers...)

const variationSelector = "\ufe0f"

// FormatSections splits a basic narrative into display sections.
func FormatSections(text string) []domain.Section {
	return FormatSectionsWith(text, SectionMarkers)
}

// FormatSectionsWith splits text at every occurrence of any marker. Text
// before the first marker is discarded. Each chunk becomes a Section whose
// Header is its first non-empty trimmed line; chunks with no content are
// dropped. Markers are honoured wherever they occur, including mid-line.
func FormatSectionsWith(text string, markers []string) []domain.Section {
	var sections []domain.Section
	start := -1
	for i := 0; i < len(text); {
		n := markerAt(text, i, markers)
		if n == 0 {
			i++
			continue
		}
		if start >= 0 {
			sections = appendChunk(sections, text[start:i])
		}
		start = i
		i += n
	}
	if start >= 0 {
		sections = appendChunk(sections, text[start:])
	}
	return sections
}

// markerAt returns the byte length of the marker starting at text[i], or 0.
func markerAt(text string, i int, markers []string) int {
	rest := text[i:]
	for _, m := range markers {
		if strings.HasPrefix(rest, m) {
			n := len(m)
			if strings.HasPrefix(rest[n:], variationSelector) {
				n += len(variationSelector)
			}
			return n
		}
	}
	return 0
}

func appendChunk(sections []domain.Section, chunk string) []domain.Section {
	var lines []string
	for _, l := range strings.Split(chunk, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return sections
	}
	return append(sections, domain.Section{Header: lines[0], Body: lines[1:]})
}
