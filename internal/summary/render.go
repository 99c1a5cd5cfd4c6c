package summary

import (
	"bytes"
	"fmt"
	"strings"

	"study-byte/internal/domain"

	"github.com/yuin/goldmark"
)

// Sections with a dedicated call-out after the detailed analysis.
const (
	TechnologiesSection = "Key Technologies"
	BenefitsSection     = "Benefits"
)

// Render lays a sectioned summary out as Markdown.
func Render(s *domain.SectionedSummary) string {
	var b strings.Builder
	b.WriteString("# Comprehensive Summary\n\n## Overview\n\n")
	for i, p := range s.Overview {
		fmt.Fprintf(&b, "%d. %s.\n", i+1, p)
	}

	b.WriteString("\n## Detailed Analysis\n")
	for _, heading := range s.SectionOrder {
		if heading == GeneralSection {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", heading)
		writeBullets(&b, s.Sections[heading])
	}

	if points, ok := s.Sections[TechnologiesSection]; ok {
		b.WriteString("\n## Key Technologies & Tools\n\n")
		writeBullets(&b, points)
	}
	if points, ok := s.Sections[BenefitsSection]; ok {
		b.WriteString("\n## Key Benefits\n\n")
		writeBullets(&b, points)
	}
	return b.String()
}

func writeBullets(b *strings.Builder, points []string) {
	for _, p := range points {
		fmt.Fprintf(b, "- %s.\n", p)
	}
}

// RenderHTML converts Markdown produced by Render, or any flat summary,
// to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}
