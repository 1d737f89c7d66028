package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"kachef/internal/admission"
	"kachef/internal/chef"
	"kachef/internal/services"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderRunSummary lists what a run produced, or why it stopped.
func renderRunSummary(res *chef.Result, colorize bool) []string {
	title := "Run " + res.Language
	if res.Variant != "" {
		title += "/" + res.Variant
	}
	lines := renderSectionHeader(title, colorize)
	if res.Mode != "" {
		lines = append(lines, renderStatusLine("Metadata mode", statusInfo, string(res.Mode), colorize))
	}
	if res.Records > 0 {
		lines = append(lines, renderStatusLine("Snapshot records", statusInfo, fmt.Sprint(res.Records), colorize))
	}
	if res.Err != nil {
		lines = append(lines, renderStatusLine("Result", statusError, res.Err.Error(), colorize))
		if hint := services.Hint(res.Err); hint != "" {
			lines = append(lines, renderStatusLine("Hint", statusInfo, hint, colorize))
		}
		return lines
	}

	lines = append(lines, renderStatusLine("Included", statusOK, fmt.Sprintf("%d nodes, %d top-level", res.Included, res.TopLevel), colorize))
	lines = append(lines, renderStatusLine("Excluded", statusInfo, formatExclusions(res.Excluded), colorize))
	if len(res.Unused) > 0 {
		lines = append(lines, renderStatusLine("Unused directives", statusWarn, strings.Join(res.Unused, ", "), colorize))
	}
	if res.TreePath != "" {
		lines = append(lines, renderStatusLine("Tree", statusOK, res.TreePath, colorize))
	}
	if res.MetadataPath != "" {
		lines = append(lines, renderStatusLine("Metadata map", statusOK, fmt.Sprintf("%s (%d slugs)", res.MetadataPath, res.MetadataSlugs), colorize))
	}
	if res.ReportPath != "" {
		lines = append(lines, renderStatusLine("Verbose report", statusInfo, res.ReportPath, colorize))
	}
	lines = append(lines, renderStatusLine("Duration", statusInfo, res.Duration.Round(time.Millisecond).String(), colorize))
	return lines
}

func formatExclusions(excluded map[admission.Reason]int) string {
	if len(excluded) == 0 {
		return "none"
	}
	reasons := make([]string, 0, len(excluded))
	total := 0
	for reason, n := range excluded {
		reasons = append(reasons, fmt.Sprintf("%s %d", reason, n))
		total += n
	}
	sort.Strings(reasons)
	return fmt.Sprintf("%d (%s)", total, strings.Join(reasons, ", "))
}
