package project

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/OpenSpeleo/compasslib/pkg/geodesy"
)

var numberOrLetterPattern = regexp.MustCompile(`[A-Za-z]|[-+]?[0-9]+(\.[0-9]+)?`)

var validate = validator.New()

// datums backs the &-record check; the comparison is case-sensitive.
var datums geodesy.DatumTable = geodesy.DefaultDatumTable()

// ParseProject parses an 8-bit ASCII project-file byte stream into a
// Project.
//
// Fatal conditions (unterminated record, unmatched folder brackets,
// malformed numeric fields) are returned as *ParseError. Records with an
// unknown leading character are treated as comments.
func ParseProject(data []byte) (*Project, error) {
	recs, unterminated, uLine := lex(data)
	if unterminated {
		return nil, newParseErr(uLine, "unterminated record (no ';' before end of input)")
	}

	p := &Project{Flags: DefaultFlags()}
	var folderStack []string
	var folderLineStack []int

	for _, r := range recs {
		text := strings.TrimSpace(r.text)
		if text == "" {
			continue
		}

		switch text[0] {
		case '#':
			entry, err := parseFileEntry(text[1:], r.line)
			if err != nil {
				return nil, err
			}
			entry.Folders = append([]string(nil), folderStack...)
			p.Files = append(p.Files, entry)
		case '[':
			name := strings.TrimSpace(text[1:])
			folderStack = append(folderStack, name)
			folderLineStack = append(folderLineStack, r.line)
		case ']':
			if len(folderStack) == 0 {
				return nil, newStructureErr(r.line, "unmatched ']'")
			}
			folderStack = folderStack[:len(folderStack)-1]
			folderLineStack = folderLineStack[:len(folderLineStack)-1]
		case '@':
			base, err := parseBaseLocation(text[1:], r.line)
			if err != nil {
				return nil, err
			}
			p.Base = base
		case '&':
			datum := strings.TrimSpace(text[1:])
			if !datums.IsKnownDatum(datum) {
				return nil, newParseErr(r.line, "unrecognised datum %q", datum)
			}
			p.Datum = datum
		case '%':
			deg, err := parseFloatField(text[1:], r.line)
			if err != nil {
				return nil, err
			}
			p.ConvergenceOverride = &ConvergenceOverride{Degrees: deg, Enabled: true}
		case '*':
			deg, err := parseFloatField(text[1:], r.line)
			if err != nil {
				return nil, err
			}
			p.ConvergenceOverride = &ConvergenceOverride{Degrees: deg, Enabled: false}
		case '$':
			zone, err := parseIntField(text[1:], r.line)
			if err != nil {
				return nil, err
			}
			p.ZoneOverride = &zone
		case '!':
			p.Flags = parseFlags(strings.TrimSpace(text[1:]))
		default:
			// Any other leading character marks a comment record.
		}
	}

	if len(folderStack) > 0 {
		return nil, newStructureErr(folderLineStack[0], "unmatched '[' for folder %q", folderStack[0])
	}

	return p, nil
}

func parseFileEntry(body string, line int) (FileEntry, error) {
	parts := splitTopLevelCommas(body)
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return FileEntry{}, newParseErr(line, "file entry missing path")
	}

	entry := FileEntry{Path: strings.TrimSpace(parts[0])}
	for _, raw := range parts[1:] {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		if idx := strings.IndexByte(item, '['); idx >= 0 {
			fixed, err := parseFixedStation(item, idx, line)
			if err != nil {
				return FileEntry{}, err
			}
			entry.Fixed = append(entry.Fixed, fixed)
			continue
		}
		entry.Links = append(entry.Links, item)
	}
	return entry, nil
}

func parseFixedStation(item string, bracketIdx int, line int) (FixedStation, error) {
	name := strings.TrimSpace(item[:bracketIdx])
	end := strings.IndexByte(item, ']')
	if end < bracketIdx {
		return FixedStation{}, newParseErr(line, "fixed station %q: missing ']'", item)
	}
	inner := item[bracketIdx+1 : end]

	tokens := numberOrLetterPattern.FindAllString(inner, -1)
	if len(tokens) != 4 {
		return FixedStation{}, newParseErr(line, "fixed station %q: expected unit,east,north,vertical", item)
	}
	unitTok := tokens[0]
	if len(unitTok) != 1 {
		return FixedStation{}, newParseErr(line, "fixed station %q: invalid unit %q", item, unitTok)
	}
	switch unitTok[0] {
	case 'F', 'f', 'M', 'm':
	default:
		return FixedStation{}, newParseErr(line, "fixed station %q: invalid unit %q", item, unitTok)
	}

	east, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return FixedStation{}, newParseErr(line, "fixed station %q: %v", item, err)
	}
	north, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return FixedStation{}, newParseErr(line, "fixed station %q: %v", item, err)
	}
	vert, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return FixedStation{}, newParseErr(line, "fixed station %q: %v", item, err)
	}

	fs := FixedStation{Name: name, Unit: unitTok[0], East: east, North: north, Vertical: vert}
	if err := validate.Struct(fs); err != nil {
		return FixedStation{}, newParseErr(line, "fixed station %q: %v", item, err)
	}
	return fs, nil
}

func parseBaseLocation(body string, line int) (BaseLocation, error) {
	parts := splitTopLevelCommas(body)
	if len(parts) != 5 {
		return BaseLocation{}, newParseErr(line, "base location: expected 5 fields, got %d", len(parts))
	}
	east, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return BaseLocation{}, newParseErr(line, "base location east: %v", err)
	}
	north, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return BaseLocation{}, newParseErr(line, "base location north: %v", err)
	}
	elev, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return BaseLocation{}, newParseErr(line, "base location elevation: %v", err)
	}
	zone, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return BaseLocation{}, newParseErr(line, "base location zone: %v", err)
	}
	conv, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
	if err != nil {
		return BaseLocation{}, newParseErr(line, "base location convergence: %v", err)
	}
	return BaseLocation{East: east, North: north, ElevMeters: elev, Zone: zone, Convergence: conv}, nil
}

func parseFloatField(body string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(body), 64)
	if err != nil {
		return 0, newParseErr(line, "malformed numeric field %q: %v", strings.TrimSpace(body), err)
	}
	return v, nil
}

func parseIntField(body string, line int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return 0, newParseErr(line, "malformed numeric field %q: %v", strings.TrimSpace(body), err)
	}
	return v, nil
}

func parseFlags(raw string) Flags {
	f := DefaultFlags()
	f.Raw = raw
	for _, c := range raw {
		switch c {
		case 'G':
			f.GlobalOverride = true
		case 'g':
			f.GlobalOverride = false
		case 'I':
			f.DeclIgnore, f.DeclAsEntered, f.DeclComputed = true, false, false
		case 'E':
			f.DeclIgnore, f.DeclAsEntered, f.DeclComputed = false, true, false
		case 'A':
			f.DeclIgnore, f.DeclAsEntered, f.DeclComputed = false, false, true
		case 'V':
			f.ApplyConvergence = true
		case 'v':
			f.ApplyConvergence = false
		case 'O':
			f.OverrideLRUDAttach = true
		case 'o':
			f.OverrideLRUDAttach = false
		case 'T':
			f.AttachToStation = true
			f.AttachSet = true
		case 't':
			f.AttachToStation = false
			f.AttachSet = true
		case 'S':
			f.ApplyShotFlags = true
		case 's':
			f.ApplyShotFlags = false
		case 'X':
			f.ApplyExclude = true
		case 'x':
			f.ApplyExclude = false
		case 'P':
			f.ApplyPlotExclude = true
		case 'p':
			f.ApplyPlotExclude = false
		case 'L':
			f.ApplyLengthExclude = true
		case 'l':
			f.ApplyLengthExclude = false
		case 'C':
			f.ApplyClosureExclude = true
		case 'c':
			f.ApplyClosureExclude = false
		}
	}
	return f
}
