package survey

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
)

var headerLabelPattern = regexp.MustCompile(
	`SURVEY NAME:|SURVEY DATE:|COMMENT:|SURVEY TEAM:|DECLINATION:|FORMAT:|CORRECTIONS2:|CORRECTIONS:`)

var flagFieldPattern = regexp.MustCompile(`#\|([A-Za-z]*)#`)

// ParseSurvey splits a survey-file byte stream on form-feed (0x0C)
// boundaries and parses each resulting chunk into a Survey. A Ctrl-Z byte
// (0x1A) terminates the file.
//
// A malformed survey header is non-fatal to the overall parse: that survey
// is skipped (recorded as a diag.KindSurveyHeader diagnostic) and parsing
// continues with the next one.
func ParseSurvey(file string, data []byte) ([]*Survey, diag.Diagnostics, error) {
	if i := bytes.IndexByte(data, 0x1A); i >= 0 {
		data = data[:i]
	}

	chunks := bytes.Split(data, []byte{0x0C})

	var surveys []*Survey
	var diags diag.Diagnostics

	for _, chunk := range chunks {
		if len(bytes.TrimSpace(chunk)) == 0 {
			continue
		}
		sv, shotDiags, err := parseOneSurvey(file, chunk)
		diags = append(diags, shotDiags...)
		if err != nil {
			name := ""
			if sv != nil {
				name = sv.Name
			}
			diags.Append(diag.KindSurveyHeader, file, name, 0, 0, "%v", err)
			continue
		}
		surveys = append(surveys, sv)
	}

	return surveys, diags, nil
}

func parseOneSurvey(file string, chunk []byte) (*Survey, diag.Diagnostics, error) {
	lines := splitLines(chunk)
	// A form feed at end of line leaves a blank first line on the next
	// chunk; the cave name is the first non-blank line.
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil, nil, newHeaderErr(file, "", "empty survey chunk")
	}

	sv := &Survey{CaveName: strings.TrimSpace(lines[0])}

	i := 1
	var headerLines []string
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if headerLabelPattern.MatchString(line) {
			headerLines = append(headerLines, line)
			i++
			// Team members are written on the line after the bare label.
			if strings.HasSuffix(strings.TrimSpace(line), "SURVEY TEAM:") && i < len(lines) &&
				!headerLabelPattern.MatchString(lines[i]) {
				headerLines = append(headerLines, lines[i])
				i++
			}
			continue
		}
		break
	}
	if i < len(lines) {
		i++ // consume the header/shot separator line
	}
	shotLines := lines[i:]

	if err := parseHeaderFields(sv, strings.Join(headerLines, " ")); err != nil {
		return sv, nil, newHeaderErr(file, sv.Name, "%v", err)
	}
	if sv.Format.Raw == "" {
		return sv, nil, newHeaderErr(file, sv.Name, "missing FORMAT: field")
	}

	var diags diag.Diagnostics
	shotIndex := 0
	for _, line := range shotLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		shotIndex++
		shot, err := parseShotRow(line, sv.Format)
		if err != nil {
			diags.Append(diag.KindSurveyRow, file, sv.Name, 0, shotIndex, "%v", err)
			continue
		}
		sv.Shots = append(sv.Shots, shot)
	}

	return sv, diags, nil
}

func splitLines(chunk []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(chunk))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

func parseHeaderFields(sv *Survey, blob string) error {
	matches := headerLabelPattern.FindAllStringIndex(blob, -1)
	if matches == nil {
		return nil
	}

	for idx, m := range matches {
		label := strings.TrimSpace(blob[m[0]:m[1]])
		end := len(blob)
		if idx+1 < len(matches) {
			end = matches[idx+1][0]
		}
		value := strings.TrimSpace(blob[m[1]:end])

		var err error
		switch label {
		case "SURVEY NAME:":
			sv.Name = firstToken(value)
		case "SURVEY DATE:":
			sv.Date = parseSurveyDate(value)
		case "COMMENT:":
			sv.Comment = value
		case "SURVEY TEAM:":
			sv.Team = splitTeam(value)
		case "DECLINATION:":
			sv.Declination, err = parseLeadingFloat(value)
		case "FORMAT:":
			sv.Format, err = ParseFormatDescriptor(firstToken(value))
		case "CORRECTIONS:":
			sv.FrontCorrections, err = parseCorrections(value)
		case "CORRECTIONS2:":
			sv.BackCorrections, err = parseBackCorrections(value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func splitTeam(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}

func parseLeadingFloat(s string) (float64, error) {
	return strconv.ParseFloat(firstToken(s), 64)
}

func parseCorrections(s string) (Corrections, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Corrections{}, errTooFewFields("CORRECTIONS:", 3, len(fields))
	}
	az, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Corrections{}, err
	}
	inc, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Corrections{}, err
	}
	length, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Corrections{}, err
	}
	return Corrections{Azimuth: az, Inclination: inc, Length: length}, nil
}

func parseBackCorrections(s string) (BackCorrections, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return BackCorrections{}, errTooFewFields("CORRECTIONS2:", 2, len(fields))
	}
	az, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return BackCorrections{}, err
	}
	inc, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return BackCorrections{}, err
	}
	return BackCorrections{Azimuth: az, Inclination: inc}, nil
}

// parseSurveyDate parses a month/day/year date; an unparsable or absent
// value defaults to 1/1/1.
func parseSurveyDate(s string) time.Time {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == ' '
	})
	if len(fields) < 3 {
		return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m, err1 := strconv.Atoi(fields[0])
	d, err2 := strconv.Atoi(fields[1])
	y, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func errTooFewFields(label string, want, got int) error {
	return &fieldCountError{label: label, want: want, got: got}
}

type fieldCountError struct {
	label      string
	want, got int
}

func (e *fieldCountError) Error() string {
	return "parse " + e.label + ": too few fields"
}
