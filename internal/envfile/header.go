package envfile

import (
	"strings"
	"time"
)

// HeaderMarker identifies envault's own provenance header.
const HeaderMarker = "Managed by envault"

const (
	headerBorder    = "# --------------------------------------------------------------"
	headerStageLine = "# Stage: "
	headerTimeLine  = "# Updated: "
)

// RenderHeader produces the provenance header written at the top of pulled
// files and generated example files, followed by one separating blank line.
func RenderHeader(stage string, at time.Time) string {
	var b strings.Builder
	b.WriteString(headerBorder + "\n")
	b.WriteString("# " + HeaderMarker + ". Do not commit this file to version control.\n")
	b.WriteString(headerStageLine + stage + "\n")
	b.WriteString(headerTimeLine + at.UTC().Format(time.RFC3339) + "\n")
	b.WriteString(headerBorder + "\n")
	b.WriteString("\n")
	return b.String()
}

// StripHeader removes a leading envault provenance header, returning the
// variable-definition lines that follow. Text without the marker passes
// through unchanged.
func StripHeader(text string) string {
	lines := strings.Split(text, "\n")
	end := headerEnd(lines)
	if end == 0 {
		return text
	}
	return strings.Join(lines[end:], "\n")
}

// HeaderStage extracts the stage name recorded in the provenance header.
// Returns false when no header is present or it carries no stage line.
func HeaderStage(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	end := headerEnd(lines)
	if end == 0 {
		return "", false
	}
	for _, line := range lines[:end] {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), strings.TrimSpace(headerStageLine)); ok {
			stage := strings.TrimSpace(rest)
			if stage != "" {
				return stage, true
			}
		}
	}
	return "", false
}

// headerEnd returns the number of leading lines occupied by the provenance
// header (including trailing blank separator lines), or 0 when no header is
// detected. A header is a bordered, contiguous comment block containing the
// marker string.
func headerEnd(lines []string) int {
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !isBorderLine(lines[i]) {
		return 0
	}

	sawMarker := false
	for j := i + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if !strings.HasPrefix(trimmed, "#") {
			// Header blocks are contiguous comments; anything else means
			// this was not our header after all.
			return 0
		}
		if strings.Contains(lines[j], HeaderMarker) {
			sawMarker = true
		}
		if isBorderLine(lines[j]) {
			if !sawMarker {
				return 0
			}
			end := j + 1
			for end < len(lines) && strings.TrimSpace(lines[end]) == "" {
				end++
			}
			return end
		}
	}
	return 0
}

// isBorderLine reports whether the line is a header border: a comment
// consisting only of dashes.
func isBorderLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "#")
	if !ok {
		return false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 4 {
		return false
	}
	return strings.Count(rest, "-") == len(rest)
}
