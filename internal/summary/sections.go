package summary

import "strings"

// GeneralSection collects text before the first heading.
const GeneralSection = "General"

// Section is one heading's worth of source text.
type Section struct {
	Heading string
	Content string
}

// isHeading reports whether a line introduces a section: its trimmed form
// ends with a colon and has something before it.
func isHeading(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) > 1 && strings.HasSuffix(t, ":")
}

// HasHeadings reports whether text contains at least one heading line.
func HasHeadings(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if isHeading(line) {
			return true
		}
	}
	return false
}

// SplitSections groups lines under the most recent heading, in order of
// first appearance. Lines before any heading go to GeneralSection. A
// heading seen again appends to its existing section, and sections with
// only blank lines are dropped.
func SplitSections(text string) []Section {
	var order []string
	bodies := map[string][]string{}

	current := GeneralSection
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if isHeading(line) {
			current = strings.TrimSuffix(strings.TrimSpace(line), ":")
			continue
		}
		if _, ok := bodies[current]; !ok {
			order = append(order, current)
		}
		bodies[current] = append(bodies[current], line)
	}

	sections := make([]Section, 0, len(order))
	for _, heading := range order {
		content := strings.Join(bodies[heading], "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}
		sections = append(sections, Section{Heading: heading, Content: content})
	}
	return sections
}

// Points splits a model summary into bullet points on ". " and strips the
// trailing period of each, so renderers can add exactly one back.
func Points(text string) []string {
	var out []string
	for _, p := range strings.Split(text, ". ") {
		p = strings.TrimSpace(p)
		p = strings.TrimRight(p, ".")
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
