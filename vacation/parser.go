/*
Package vacation turns typed or uploaded text into vacation ranges.

GRAMMAR:
  date  := DD.MM.YYYY | DD.MM | DD MM | DDMMYYYY | DDMM
  line  := date "-" date        (tried first when the line has a hyphen)
         | date WS date         (exactly two whitespace-separated tokens)
         | date                 (single day)

  A missing year means the current year. Reversed pairs are swapped.
  Ranges with a year outside [MinYear, current year + MaxYearsAhead] are
  dropped, as are unparseable lines: bulk parsing never fails mid-batch.

FILES:
  Plain text: one entry per line; blank lines and "#" comments ignored.
  CSV: "," or ";" separated; header rows skipped; two cells are start/end,
  one cell is a date or a hyphenated range. Files longer than MaxLines are
  truncated. A UTF-8 byte order mark is stripped.

SEE ALSO:
  - upload.go: size and extension checks done before parsing
  - calendar/vacation.go: Range and IsVacationDay
*/
package vacation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/warp/payday-engine/calendar"
)

const (
	// MinYear is the earliest year a vacation may fall in.
	MinYear = 2020

	// MaxYearsAhead bounds how far past the current year a vacation may fall.
	MaxYearsAhead = 5

	// MaxLines caps how many lines of a file are read.
	MaxLines = 1000

	// DisplayLayout is the day format used by FormatRange.
	DisplayLayout = "02.01.2006"
)

var (
	dottedDate  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?$`)
	spacedDate  = regexp.MustCompile(`^(\d{1,2})\s+(\d{1,2})$`)
	compactDate = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})?$`)
	headerCell  = regexp.MustCompile(`(?i)(date|start|дата|начал)`)
	dashes      = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// Parser parses vacation text relative to the current year.
type Parser struct {
	Now      func() time.Time
	Location *time.Location
	MaxLines int
}

// NewParser returns a parser whose "current year" is read in loc.
func NewParser(loc *time.Location) *Parser {
	return &Parser{Now: time.Now, Location: loc, MaxLines: MaxLines}
}

func (p *Parser) currentYear() int {
	return calendar.Today(p.Now(), p.Location).Year()
}

// =============================================================================
// SINGLE DATES
// =============================================================================

// ParseDate parses one date in any of the accepted forms.
func (p *Parser) ParseDate(s string) (calendar.Date, error) {
	s = strings.TrimSpace(s)

	var day, month, year string
	switch {
	case dottedDate.MatchString(s):
		m := dottedDate.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case spacedDate.MatchString(s):
		m := spacedDate.FindStringSubmatch(s)
		day, month = m[1], m[2]
	case compactDate.MatchString(s):
		m := compactDate.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	default:
		return calendar.Date{}, &ParseError{Input: s, Reason: "unrecognized date format"}
	}

	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y := p.currentYear()
	if year != "" {
		y, _ = strconv.Atoi(year)
	}

	if m < 1 || m > 12 {
		return calendar.Date{}, &ParseError{Input: s, Reason: fmt.Sprintf("month %d out of range", m)}
	}
	if d < 1 || d > calendar.DaysIn(y, time.Month(m)) {
		return calendar.Date{}, &ParseError{Input: s, Reason: fmt.Sprintf("day %d out of range", d)}
	}
	return calendar.NewDate(y, time.Month(m), d), nil
}

// =============================================================================
// LINES
// =============================================================================

// ParseLine parses a range or a single day. ok is false for unparseable
// input and for ranges outside the allowed years.
func (p *Parser) ParseLine(text string) (calendar.Range, bool) {
	line := strings.TrimSpace(dashes.Replace(text))
	if line == "" {
		return calendar.Range{}, false
	}

	if r, found := p.parseHyphenated(line); found {
		return p.accept(r)
	}

	if fields := strings.Fields(line); len(fields) == 2 {
		a, errA := p.ParseDate(fields[0])
		b, errB := p.ParseDate(fields[1])
		if errA == nil && errB == nil {
			return p.accept(calendar.NewRange(a, b))
		}
	}

	d, err := p.ParseDate(line)
	if err != nil {
		return calendar.Range{}, false
	}
	return p.accept(calendar.NewRange(d, d))
}

// parseHyphenated tries "<date>-<date>".
func (p *Parser) parseHyphenated(line string) (calendar.Range, bool) {
	start, end, ok := strings.Cut(line, "-")
	if !ok {
		return calendar.Range{}, false
	}
	a, errA := p.ParseDate(start)
	b, errB := p.ParseDate(end)
	if errA != nil || errB != nil {
		return calendar.Range{}, false
	}
	return calendar.NewRange(a, b), true
}

// accept applies the year window.
func (p *Parser) accept(r calendar.Range) (calendar.Range, bool) {
	if err := p.Validate(r); err != nil {
		return calendar.Range{}, false
	}
	return r, true
}

// Validate checks that both endpoints fall within the allowed years.
func (p *Parser) Validate(r calendar.Range) error {
	maxYear := p.currentYear() + MaxYearsAhead
	for _, d := range []calendar.Date{r.Start, r.End} {
		if d.Year() < MinYear || d.Year() > maxYear {
			return &ValidationError{Range: r, MinYear: MinYear, MaxYear: maxYear}
		}
	}
	return nil
}

// ParseText parses one entry per line, skipping blank lines, comments and
// anything unparseable. ErrNoVacations is returned when nothing parsed.
func (p *Parser) ParseText(text string) ([]calendar.Range, error) {
	var ranges []calendar.Range
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if r, ok := p.ParseLine(line); ok {
			ranges = append(ranges, r)
		}
	}
	if len(ranges) == 0 {
		return nil, ErrNoVacations
	}
	return ranges, nil
}

// =============================================================================
// FILES
// =============================================================================

// ParseFile parses uploaded file contents as CSV or plain text.
func (p *Parser) ParseFile(contents []byte, isCSV bool) ([]calendar.Range, error) {
	text, _, err := transform.String(unicode.UTF8BOM.NewDecoder(), string(contents))
	if err != nil {
		return nil, fmt.Errorf("decoding file: %w", err)
	}
	text = truncateLines(text, p.maxLines())

	if !isCSV {
		return p.ParseText(text)
	}
	return p.parseCSV(text)
}

func (p *Parser) parseCSV(text string) ([]calendar.Range, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(text)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var ranges []calendar.Range
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if rng, ok := p.parseRow(row); ok {
			ranges = append(ranges, rng)
		}
	}

	if len(ranges) == 0 {
		return nil, ErrNoVacations
	}
	return ranges, nil
}

func (p *Parser) parseRow(row []string) (calendar.Range, bool) {
	if len(row) == 0 {
		return calendar.Range{}, false
	}
	first := strings.TrimSpace(row[0])
	if first == "" || headerCell.MatchString(first) {
		return calendar.Range{}, false
	}

	if len(row) >= 2 && strings.TrimSpace(row[1]) != "" {
		a, errA := p.ParseDate(first)
		b, errB := p.ParseDate(row[1])
		if errA != nil || errB != nil {
			return calendar.Range{}, false
		}
		return p.accept(calendar.NewRange(a, b))
	}

	if d, err := p.ParseDate(first); err == nil {
		return p.accept(calendar.NewRange(d, d))
	}
	if r, ok := p.parseHyphenated(dashes.Replace(first)); ok {
		return p.accept(r)
	}
	return calendar.Range{}, false
}

func (p *Parser) maxLines() int {
	if p.MaxLines > 0 {
		return p.MaxLines
	}
	return MaxLines
}

// FormatRange renders r as "DD.MM.YYYY-DD.MM.YYYY", which ParseLine reads back.
func FormatRange(r calendar.Range) string {
	return r.Start.Format(DisplayLayout) + "-" + r.End.Format(DisplayLayout)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func truncateLines(text string, max int) string {
	lines := splitLines(text)
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:max], "\n")
}

// detectDelimiter picks ";" when the first non-empty line has more
// semicolons than commas.
func detectDelimiter(text string) rune {
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		return ','
	}
	return ','
}
