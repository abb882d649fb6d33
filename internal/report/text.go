package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"nixscan/internal/analysis"
)

// maxLocationWidth caps the location column; longer paths are truncated
// from the left.
const maxLocationWidth = 48

type TextOptions struct {
	Color bool
	// Width truncates descriptions so lines fit; 0 means no limit.
	Width int
	// Quiet prints only the summary.
	Quiet bool
}

type palette struct {
	sev   map[analysis.Severity]*color.Color
	dim   *color.Color
	bold  *color.Color
	diags map[string]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[analysis.Severity]*color.Color{
			analysis.SevCritical: color.New(color.FgHiRed, color.Bold),
			analysis.SevHigh:     color.New(color.FgRed),
			analysis.SevMedium:   color.New(color.FgYellow),
			analysis.SevLow:      color.New(color.FgCyan),
		},
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
		diags: map[string]*color.Color{
			"error":   color.New(color.FgRed, color.Bold),
			"warning": color.New(color.FgYellow),
			"info":    color.New(color.FgBlue),
		},
	}
	all := []*color.Color{p.dim, p.bold}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range p.diags {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText renders doc for a terminal.
func WriteText(w io.Writer, doc *Document, opts TextOptions) error {
	p := newPalette(opts.Color)
	tw := &textWriter{w: w}

	if !opts.Quiet {
		for _, f := range doc.Failures {
			tw.printf("%s %s: %s\n", p.diags["error"].Sprint("unreadable"), f.Path, f.Error)
		}
		writeDiagnostics(tw, p, doc.Diagnostics)
		writeFindings(tw, p, doc.Findings, opts.Width)
		if doc.Graph != nil {
			writeGraph(tw, p, doc.Graph)
		}
		if doc.Timing != nil && len(doc.Timing.Phases) > 0 {
			tw.printf("%s\n", p.bold.Sprint("timings:"))
			for _, ph := range doc.Timing.Phases {
				tw.printf("  %-10s %8.2f ms\n", ph.Name, ph.DurationMS)
			}
			tw.printf("  %-10s %8.2f ms\n", "total", doc.Timing.TotalMS)
		}
	}
	tw.printf("%s\n", summaryLine(p, doc.Summary))
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func location(file string, line int) string {
	loc := file
	if line > 0 {
		loc += ":" + strconv.Itoa(line)
	}
	if runewidth.StringWidth(loc) > maxLocationWidth {
		// хвост пути информативнее начала
		r := []rune(loc)
		for runewidth.StringWidth(string(r)) > maxLocationWidth-1 {
			r = r[1:]
		}
		loc = "…" + string(r)
	}
	return loc
}

func writeFindings(tw *textWriter, p palette, findings []analysis.Finding, width int) {
	if len(findings) == 0 {
		return
	}
	locWidth, kindWidth := 0, 0
	for _, f := range findings {
		locWidth = max(locWidth, runewidth.StringWidth(location(f.File, f.Line)))
		kindWidth = max(kindWidth, runewidth.StringWidth(f.Kind))
	}
	for _, f := range findings {
		loc := runewidth.FillRight(location(f.File, f.Line), locWidth)
		sev := runewidth.FillRight(strings.ToUpper(f.Severity.String()), len("CRITICAL"))
		kind := runewidth.FillRight(f.Kind, kindWidth)
		desc := f.Description
		if width > 0 {
			used := locWidth + len("CRITICAL") + kindWidth + 3
			desc = runewidth.Truncate(desc, max(width-used, 10), "…")
		}
		c := p.sev[f.Severity]
		tw.printf("%s %s %s %s\n", loc, c.Sprint(sev), p.bold.Sprint(kind), desc)
		if f.Suggestion != "" {
			tw.printf("%s %s\n", strings.Repeat(" ", locWidth), p.dim.Sprint("hint: "+f.Suggestion))
		}
	}
}

// WriteDiagnostics prints diags one per line, file:line:col first.
func WriteDiagnostics(w io.Writer, diags []Diagnostic, colored bool) error {
	tw := &textWriter{w: w}
	writeDiagnostics(tw, newPalette(colored), diags)
	return tw.err
}

func writeDiagnostics(tw *textWriter, p palette, diags []Diagnostic) {
	for _, d := range diags {
		c := p.diags[d.Severity]
		if c == nil {
			c = p.diags["info"]
		}
		if d.File != "" {
			tw.printf("%s:%d:%d: %s %s: %s\n", d.File, d.Line, d.Col, c.Sprint(d.Severity), d.Code, d.Message)
		} else {
			tw.printf("%s %s: %s\n", c.Sprint(d.Severity), d.Code, d.Message)
		}
	}
}

func writeGraph(tw *textWriter, p palette, g *Graph) {
	s := g.Summary
	tw.printf("%s %d files, %d edges (%d resolved, %d missing), max depth %d, %d cycles, %d unused\n",
		p.bold.Sprint("graph:"), s.Files, s.Edges, s.Resolved, s.Missing, s.MaxDepth, s.Cycles, s.Unused)
	for _, c := range g.Cycles {
		tw.printf("  cycle: %s\n", strings.Join(c, " -> "))
	}
	for _, e := range g.Missing {
		tw.printf("  missing: %s -> %s (%s)\n", location(e.Source, e.Line), e.Target, e.Kind)
	}
	for _, u := range g.Unused {
		tw.printf("  unused: %s\n", u)
	}
	for i, b := range g.Batches {
		tw.printf("  %s %d: %s\n", p.dim.Sprint("level"), i, strings.Join(b, " "))
	}
}

func summaryLine(p palette, s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d files parsed", s.Parsed)
	var extra []string
	if s.WithErrors > 0 {
		extra = append(extra, fmt.Sprintf("%d with errors", s.WithErrors))
	}
	if s.Failed > 0 {
		extra = append(extra, fmt.Sprintf("%d unreadable", s.Failed))
	}
	if s.Cached > 0 {
		extra = append(extra, fmt.Sprintf("%d cached", s.Cached))
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extra, ", "))
	}
	fmt.Fprintf(&b, ", %d findings", s.Findings)
	var parts []string
	for sev := analysis.SevCritical; ; sev-- {
		if n := s.BySeverity[sev.String()]; n > 0 {
			parts = append(parts, p.sev[sev].Sprintf("%d %s", n, sev))
		}
		if sev == analysis.SevLow {
			break
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(parts, ", "))
	}
	return b.String()
}
