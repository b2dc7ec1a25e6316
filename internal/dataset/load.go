package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadOptions controls CSV parsing.
type LoadOptions struct {
	// Delimiter for CSV. If 0, it is chosen from the file name (.tsv → tab, else comma).
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection: Sheet by name, else SheetIndex (1-based; 0 means the first sheet).
	Sheet      string
	SheetIndex int
}

// missingTokens are cell values read as missing in any column.
var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "-": true, "?": true,
}

// LoadFile reads a CSV, TSV or XLSX file into a Frame.
func LoadFile(path string, opt LoadOptions) (*Frame, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return Load(f, filepath.Base(path), opt)
}

// Load reads CSV from r. A column is numeric when every non-missing cell parses as a number.
func Load(r io.Reader, name string, opt LoadOptions) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	return build(cr, name, opt)
}

// recordReader yields one record per call and io.EOF after the last.
type recordReader interface {
	Read() ([]string, error)
}

// build reads a header record and data records from rr and infers column kinds.
func build(rr recordReader, name string, opt LoadOptions) (*Frame, error) {
	header, err := rr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no header", ErrEmptyData, name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	cols := make([]*Column, ncol)
	for i, h := range header {
		hn := strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if hn == "" {
			hn = fmt.Sprintf("column_%d", i+1)
		}
		_, unit := splitUnits(hn)
		cols[i] = &Column{Name: hn, Unit: unit}
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	rows := 0
	for rows < maxRows {
		rec, err := rr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && ncol > 1 {
			continue
		}
		if len(rec) > ncol {
			log.Warn().Str("file", name).Int("row", rows+1).Int("fields", len(rec)).Msg("extra fields ignored")
		}
		for i, c := range cols {
			val := ""
			if i < len(rec) {
				val = strings.TrimSpace(rec[i])
			}
			c.Text = append(c.Text, val)
		}
		rows++
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrEmptyData, name)
	}

	frame := &Frame{Name: name, Columns: cols}
	for _, c := range cols {
		c.Kind = Categorical
		nums := make([]float64, len(c.Text))
		parsed, ok := 0, true
		for r, s := range c.Text {
			if isMissing(s) {
				nums[r] = math.NaN()
				continue
			}
			v, good := parseNumeric(s, opt)
			if !good {
				ok = false
				break
			}
			nums[r] = v
			parsed++
		}
		if ok && parsed > 0 {
			c.Kind = Numeric
			c.Num = nums
		}
	}
	if len(frame.NumericColumns()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoNumericColumns, name)
	}
	log.Debug().
		Str("file", name).
		Int("rows", rows).
		Int("columns", ncol).
		Int("numeric", len(frame.NumericColumns())).
		Msg("dataset loaded")
	return frame, nil
}

func isMissing(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	return ','
}

// parseNumeric accepts plain, percent, and locale-formatted numbers ("1.234,5", "1,234.5").
func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // Alpha (%)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // Mass [mg/L]
	regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|kg|cm|mm|km|%|ppm|ppb|USD|EUR)$`),
}

// splitUnits separates a trailing unit annotation from a column header.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
