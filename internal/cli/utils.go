// Package cli provides output writers for the seisho command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per hit or label.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// maxVerseText is the number of characters of verse text shown in text output.
const maxVerseText = 200

// ParseOutputFormat parses a format name. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

// Terminal escapes around highlighted matches in text output.
const (
	highlightOn  = "\x1b[1m"
	highlightOff = "\x1b[0m"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps. In text output,
// occurrences of the highlight terms are shown in bold.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat, highlight ...string) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Volume, r.Reference(), r.Text)
		}
		return nil
	default:
		writeSearchResultsText(w, response, highlight)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, highlight []string) {
	fmt.Fprintf(w, "\nFound %d verses for %q in %dms\n\n", response.Total, response.Query, response.QueryTime)
	volume := ""
	for _, r := range response.Results {
		if r.Volume != volume {
			volume = r.Volume
			fmt.Fprintf(w, "─── %s ───\n", volume)
		}
		text := utils.Truncate(r.Text, maxVerseText)
		if len(highlight) > 0 {
			text = search.Highlight(text, highlight, highlightOn, highlightOff)
		}
		fmt.Fprintf(w, "%-20s %s\n", r.Reference(), text)
	}
	if len(response.Results) > 0 {
		fmt.Fprintln(w)
	}
}

// WriteFrequencies writes a frequency table to w. Labels appear in the response's
// order and terms in the order they were requested.
func WriteFrequencies(w io.Writer, response *models.FrequencyResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, label := range response.Labels {
			counts := response.Table[label]
			parts := make([]string, 0, len(response.Terms))
			for _, term := range response.Terms {
				parts = append(parts, fmt.Sprintf("%s=%d", term, counts[term]))
			}
			fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(parts, " "))
		}
		return nil
	default:
		return writeFrequenciesText(w, response)
	}
}

func writeFrequenciesText(w io.Writer, response *models.FrequencyResponse) error {
	title := "book"
	if response.Book != "" {
		title = "chapter"
		fmt.Fprintf(w, "\nChapter frequencies in %s (%dms)\n\n", response.Book, response.QueryTime)
	} else {
		fmt.Fprintf(w, "\nBook frequencies (%dms)\n\n", response.QueryTime)
	}
	if len(response.Labels) == 0 {
		fmt.Fprintln(w, "No occurrences.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t", title)
	for _, term := range response.Terms {
		fmt.Fprintf(tw, "%s\t", term)
	}
	fmt.Fprintln(tw, "total\t")
	for _, label := range response.Labels {
		counts := response.Table[label]
		fmt.Fprintf(tw, "%s\t", label)
		for _, term := range response.Terms {
			fmt.Fprintf(tw, "%d\t", counts[term])
		}
		fmt.Fprintf(tw, "%d\t\n", response.Table.Total(label))
	}
	return tw.Flush()
}

// WriteStatus writes per-volume load status to w.
func WriteStatus(w io.Writer, status []corpus.VolumeStatus, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, map[string]interface{}{"volumes": status})
	case OutputCompact:
		for _, s := range status {
			fmt.Fprintf(w, "%s\t%s\t%d\n", s.Name, s.State, s.Verses)
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VOLUME\tSTATE\tBOOKS\tCHAPTERS\tVERSES\tDETAIL")
	for _, s := range status {
		detail := s.LastError
		if detail == "" && s.Digest != "" {
			detail = utils.Truncate(s.Digest, 12)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", s.Name, s.State, s.Books, s.Chapters, s.Verses, detail)
	}
	return tw.Flush()
}

// WriteImportResult writes a summary of an import run.
func WriteImportResult(w io.Writer, imported, skipped, removed []string, failed map[string]string) {
	for _, name := range imported {
		fmt.Fprintf(w, "imported  %s\n", name)
	}
	for _, name := range skipped {
		fmt.Fprintf(w, "unchanged %s\n", name)
	}
	for _, name := range removed {
		fmt.Fprintf(w, "removed   %s\n", name)
	}
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "failed    %s: %s\n", name, failed[name])
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
