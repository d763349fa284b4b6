package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"starbank/internal/mapinfo"
	"starbank/internal/preflight"
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

const (
	reportIndent    = "  "
	modifiedLayout  = "2006-01-02 15:04"
	malformedIntro  = "The following maps are malformed:"
	malformedFooter = "Please report these maps along with the cache files listed so the header parser can be fixed."
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return colorizeText(kind, base, colorize)
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

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		switch {
		case result.Passed:
		case result.Required:
			kind = statusError
		default:
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
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

func colorizeText(kind statusKind, value string, colorize bool) string {
	if !colorize {
		return value
	}
	if color := statusKindColor(kind); color != "" {
		return color + value + ansiReset
	}
	return value
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

// renderMalformedReport lists malformed maps one per line. Unreadable archives
// are errors; header anomalies are warnings. An empty report renders nothing.
func renderMalformedReport(report mapinfo.MalformedReport, colorize bool) []string {
	if len(report) == 0 {
		return nil
	}
	lines := []string{malformedIntro, ""}
	for _, item := range report {
		kind := statusWarn
		if item.Kind == mapinfo.KindArchiveUnreadable {
			kind = statusError
		}
		line := fmt.Sprintf("%s[%s] %s", reportIndent, malformedKindLabel(item.Kind), item.Identifier())
		if detail := strings.TrimSpace(item.Detail); detail != "" {
			line += " (" + detail + ")"
		}
		lines = append(lines, colorizeText(kind, line, colorize))
	}
	lines = append(lines, "", malformedFooter)
	return lines
}

func malformedKindLabel(kind mapinfo.MalformedKind) string {
	switch kind {
	case mapinfo.KindArchiveUnreadable:
		return "UNREADABLE"
	case mapinfo.KindHeaderTooShort:
		return "SHORT HEADER"
	case mapinfo.KindNameFieldTooShort:
		return "NO NAME"
	case mapinfo.KindAuthorFieldTooShort:
		return "NO AUTHOR"
	default:
		return strings.ToUpper(string(kind))
	}
}

func protectionLabel(value *bool) string {
	if value == nil {
		return "unknown"
	}
	return yesNo(*value)
}

func authorLabel(entry mapinfo.MapEntry) string {
	if entry.AuthorMissing {
		return "(missing)"
	}
	return entry.AuthorName
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(modifiedLayout)
}

func renderScanSummary(result *mapinfo.ScanResult) string {
	stats := result.Stats
	summary := fmt.Sprintf("%d maps from %d archives", len(result.Entries), stats.Discovered)
	if stats.Rejected > 0 {
		summary += fmt.Sprintf(", %d older duplicates skipped", stats.Rejected)
	}
	if stats.Malformed > 0 {
		summary += fmt.Sprintf(", %d malformed", stats.Malformed)
	}
	return summary + fmt.Sprintf(" (%s)", stats.Duration.Round(time.Millisecond))
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
