package vacation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/vacation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var moscow = time.FixedZone("MSK", 3*60*60)

// newParser pins "today" to 2026-10-18, so the allowed years are 2020..2031.
func newParser() *vacation.Parser {
	return &vacation.Parser{
		Now:      func() time.Time { return time.Date(2026, time.October, 18, 12, 0, 0, 0, moscow) },
		Location: moscow,
	}
}

func day(y int, m time.Month, d int) calendar.Date { return calendar.NewDate(y, m, d) }

func span(a, b calendar.Date) calendar.Range { return calendar.Range{Start: a, End: b} }

// =============================================================================
// DATES
// =============================================================================

func TestParseDate_Formats(t *testing.T) {
	p := newParser()
	tests := []struct {
		in   string
		want calendar.Date
	}{
		{"01.03.2026", day(2026, time.March, 1)},
		{"1.3.2026", day(2026, time.March, 1)},
		{"01.03", day(2026, time.March, 1)},
		{"01 03", day(2026, time.March, 1)},
		{"01032025", day(2025, time.March, 1)},
		{"0103", day(2026, time.March, 1)},
		{"29.02.2028", day(2028, time.February, 29)},
		{"  15.06.2027 ", day(2027, time.June, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := p.ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}
}

func TestParseDate_RejectsImpossibleDates(t *testing.T) {
	p := newParser()
	for _, in := range []string{"31.02.2026", "29.02.2027", "13.13", "00.05", "abc", "", "1.2.3", "010320"} {
		t.Run(in, func(t *testing.T) {
			_, err := p.ParseDate(in)
			var pe *vacation.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

// =============================================================================
// LINES
// =============================================================================

func TestParseLine(t *testing.T) {
	p := newParser()
	march := span(day(2026, time.March, 1), day(2026, time.March, 5))

	tests := []struct {
		name string
		in   string
		want calendar.Range
		ok   bool
	}{
		{"hyphenated", "01.03.2026-05.03.2026", march, true},
		{"hyphen with spaces", "01.03.2026 - 05.03.2026", march, true},
		{"en dash", "01.03.2026 – 05.03.2026", march, true},
		{"em dash", "01.03.2026—05.03.2026", march, true},
		{"short year-less", "01.03-05.03", march, true},
		{"two tokens", "01.03.2026 05.03.2026", march, true},
		{"compact tokens", "0103 0503", march, true},
		{"reversed is swapped", "05.03.2026-01.03.2026", march, true},
		{"single day", "15.06", span(day(2026, time.June, 15), day(2026, time.June, 15)), true},
		{"spaced single day", "01 03", span(day(2026, time.March, 1), day(2026, time.March, 1)), true},
		{"garbage", "next week", calendar.Range{}, false},
		{"empty", "   ", calendar.Range{}, false},
		{"half a range", "01.03.2026-soon", calendar.Range{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.ParseLine(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, got.Start.Equal(tt.want.Start), "start %s", got.Start)
				assert.True(t, got.End.Equal(tt.want.End), "end %s", got.End)
			}
		})
	}
}

func TestParseLine_YearWindow(t *testing.T) {
	p := newParser()

	// GIVEN: today is in 2026, so 2020..2031 is allowed
	_, ok := p.ParseLine("01.01.2019-05.01.2019")
	assert.False(t, ok, "2019 is before the minimum year")

	_, ok = p.ParseLine("01.01.2020-05.01.2020")
	assert.True(t, ok)

	_, ok = p.ParseLine("31.12.2019-05.01.2020")
	assert.False(t, ok, "one endpoint out of window drops the range")

	_, ok = p.ParseLine("01.01.2031")
	assert.True(t, ok)

	_, ok = p.ParseLine("01.01.2032")
	assert.False(t, ok)
}

func TestValidate_ReportsWindow(t *testing.T) {
	err := newParser().Validate(span(day(2019, time.May, 1), day(2019, time.May, 2)))

	var ve *vacation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2020, ve.MinYear)
	assert.Equal(t, 2031, ve.MaxYear)
}

func TestFormatRange_RoundTrips(t *testing.T) {
	p := newParser()
	ranges := []calendar.Range{
		span(day(2026, time.March, 1), day(2026, time.March, 5)),
		span(day(2027, time.December, 30), day(2028, time.January, 9)),
		span(day(2026, time.June, 15), day(2026, time.June, 15)),
	}
	for _, r := range ranges {
		text := vacation.FormatRange(r)
		got, ok := p.ParseLine(text)
		require.True(t, ok, text)
		assert.True(t, got.Start.Equal(r.Start) && got.End.Equal(r.End), text)
	}
	assert.Equal(t, "01.03.2026-05.03.2026", vacation.FormatRange(ranges[0]))
}

// =============================================================================
// TEXT AND FILES
// =============================================================================

func TestParseText_SkipsCommentsAndGarbage(t *testing.T) {
	text := strings.Join([]string{
		"# summer",
		"01.07.2026-14.07.2026",
		"",
		"not a date",
		"01.01.2019",
		"25.12",
	}, "\r\n")

	got, err := newParser().ParseText(text)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Start.Equal(day(2026, time.July, 1)))
	assert.True(t, got[1].End.Equal(day(2026, time.December, 25)))
}

func TestParseText_NothingParsed(t *testing.T) {
	_, err := newParser().ParseText("# only a comment\n\nhello\n")
	assert.ErrorIs(t, err, vacation.ErrNoVacations)
}

func TestParseFile_PlainTextWithBOM(t *testing.T) {
	contents := []byte("\xEF\xBB\xBF01.03.2026-05.03.2026\n")

	got, err := newParser().ParseFile(contents, false)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(day(2026, time.March, 1)))
}

func TestParseFile_CSV(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     int
	}{
		{"comma with header", "start,end\n01.03.2026,05.03.2026\n10.03.2026\n", 2},
		{"semicolon with russian header", "Дата начала;Дата окончания\n01.03.2026;05.03.2026\n", 1},
		{"single hyphenated cell", "01.03.2026-05.03.2026\n", 1},
		{"empty second cell", "10.03.2026,\n", 1},
		{"bad row skipped", "date,end\nfoo,bar\n01.04.2026,02.04.2026\n", 1},
		{"comment rows", "# exported\n01.04.2026,02.04.2026\n", 1},
		{"bom", "\xEF\xBB\xBFstart;end\n01.04.2026;02.04.2026\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newParser().ParseFile([]byte(tt.contents), true)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseFile_CSVHeaderOnly(t *testing.T) {
	_, err := newParser().ParseFile([]byte("start,end\n"), true)
	assert.ErrorIs(t, err, vacation.ErrNoVacations)
}

func TestParseFile_TruncatesLongFiles(t *testing.T) {
	p := newParser()
	p.MaxLines = 2

	got, err := p.ParseFile([]byte("01.03.2026\n02.03.2026\n03.03.2026\n"), false)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// =============================================================================
// UPLOADS
// =============================================================================

func TestCheckUpload(t *testing.T) {
	assert.NoError(t, vacation.CheckUpload("leave.csv", 100))
	assert.NoError(t, vacation.CheckUpload("leave.TXT", 100))
	assert.NoError(t, vacation.CheckUpload("leave.text", vacation.MaxUploadBytes))

	assert.ErrorIs(t, vacation.CheckUpload("leave.pdf", 100), vacation.ErrUnsupportedFile)
	assert.ErrorIs(t, vacation.CheckUpload("leave", 100), vacation.ErrUnsupportedFile)
	assert.ErrorIs(t, vacation.CheckUpload("leave.csv", vacation.MaxUploadBytes+1), vacation.ErrFileTooLarge)
}

func TestIsCSV(t *testing.T) {
	assert.True(t, vacation.IsCSV("a.CSV"))
	assert.False(t, vacation.IsCSV("a.txt"))
}
