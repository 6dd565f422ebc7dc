// Package analyze derives structural metrics from rendered Markdown and from
// merged transcript turns. It reads the rendered artifact only, so it works on
// Markdown produced elsewhere as well.
package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})[ \t]`)
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s`)
	markerRe   = regexp.MustCompile(`^\s*(?:#{1,6}[ \t]+|[-*+][ \t]+|\d+\.[ \t]+)`)
)

// DocumentMetrics describes the structure of a Markdown document.
type DocumentMetrics struct {
	HeadingCounts map[int]int `json:"heading_counts"`
	SectionCount  int         `json:"section_count"` // H3 headings
	BulletCount   int         `json:"bullet_count"`
	NumberedCount int         `json:"numbered_count"`
	WordCount     int         `json:"word_count"`
	LineCount     int         `json:"line_count"`
}

// Analyze scans markdown line by line.
func Analyze(markdown string) DocumentMetrics {
	m := DocumentMetrics{HeadingCounts: make(map[int]int)}
	lines := splitLines(markdown)
	m.LineCount = len(lines)

	for _, line := range lines {
		if match := headingRe.FindStringSubmatch(line); match != nil {
			level := len(match[1])
			m.HeadingCounts[level]++
			if level == 3 {
				m.SectionCount++
			}
		}
		if bulletRe.MatchString(line) {
			m.BulletCount++
		}
		if numberedRe.MatchString(line) {
			m.NumberedCount++
		}
		m.WordCount += CountWords(markerRe.ReplaceAllString(line, ""))
	}
	return m
}

// HeadingBreakdown returns counts keyed "h1".."h6". h1-h3 are always present.
func (m DocumentMetrics) HeadingBreakdown() map[string]int {
	out := map[string]int{"h1": 0, "h2": 0, "h3": 0}
	for level, n := range m.HeadingCounts {
		out[fmt.Sprintf("h%d", level)] = n
	}
	return out
}

// CountWords counts runs of non-whitespace. Analyze strips line markers
// before counting, so "- Item A" is two words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
