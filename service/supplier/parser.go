package supplier

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate is one normalized, validated feed record.
type Candidate struct {
	ArticleNumber string
	EAN           *string
	Price         decimal.Decimal
	Stock         int

	Brand       *string
	Model       *string
	Width       *string
	Height      *string
	Diameter    *string
	LoadIndex   *string
	SpeedIndex  *string
	Season      *string
	VehicleType *string
	RunFlat     bool
	ThreePMSF   bool

	LabelFuelEfficiency *string
	LabelWetGrip        *string
	LabelNoise          *int
	LabelNoiseClass     *string
	EprelURL            *string
}

// RowWarning describes a skipped feed line.
type RowWarning struct {
	Line   int
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("feed line %d: %s", w.Line, w.Reason)
}

// ParseResult holds the candidates of one feed plus what was dropped on the way.
type ParseResult struct {
	Candidates []Candidate
	Warnings   []RowWarning
	// Lines counts non-blank data lines after the header.
	Lines int
	// Filtered counts rows excluded by the item type/subtype filter.
	Filtered int
	// Duplicates counts rows that replaced an earlier row with the same article number.
	Duplicates int
}

const maxFeedLine = 1 << 20

// Parse reads a semicolon-delimited supplier feed. The first line is a header.
// Bad rows, including lines over maxFeedLine, are skipped with a warning;
// only read errors fail the parse.
// Quotes carry no meaning in this format and are kept as literal text.
func Parse(r io.Reader) (*ParseResult, error) {
	res := &ParseResult{}
	br := bufio.NewReaderSize(r, 64*1024)

	index := make(map[string]int)
	lineNo := 0
	headerSeen := false
	var buf []byte
	for {
		raw, tooLong, err := readFeedLine(br, buf)
		buf = raw
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		if eof && len(raw) == 0 && !tooLong {
			break
		}
		lineNo++

		switch {
		case tooLong && !headerSeen:
			headerSeen = true
		case tooLong:
			res.Lines++
			res.warn(lineNo, "line exceeds 1 MiB")
		default:
			line := strings.TrimSpace(string(raw))
			if line == "" {
				break
			}
			if !headerSeen {
				headerSeen = true
				break
			}
			res.Lines++
			res.addRow(index, lineNo, line)
		}
		if eof {
			break
		}
	}
	return res, nil
}

// readFeedLine returns the next line including its terminator, reusing buf.
// A line longer than maxFeedLine is drained to its end and reported as tooLong.
func readFeedLine(br *bufio.Reader, buf []byte) (line []byte, tooLong bool, err error) {
	buf = buf[:0]
	for {
		frag, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(bytes.TrimRight(frag, "\r\n")) > maxFeedLine {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, frag...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return buf, tooLong, err
	}
}

func (r *ParseResult) addRow(index map[string]int, lineNo int, line string) {
	cols := strings.Split(line, FeedDelimiter)
	if len(cols) < FeedColumns {
		r.warn(lineNo, fmt.Sprintf("expected %d columns, got %d", FeedColumns, len(cols)))
		return
	}
	row, err := decodeFeedRow(cols, nil)
	if err != nil {
		r.warn(lineNo, err.Error())
		return
	}
	if !isTireForCarOrBike(row.ItemType, row.ItemSubtype) {
		r.Filtered++
		return
	}

	c, reason := normalize(row)
	if reason != "" {
		r.warn(lineNo, reason)
		return
	}
	if i, dup := index[c.ArticleNumber]; dup {
		r.Candidates[i] = c
		r.Duplicates++
		return
	}
	index[c.ArticleNumber] = len(r.Candidates)
	r.Candidates = append(r.Candidates, c)
}

func (r *ParseResult) warn(line int, reason string) {
	r.Warnings = append(r.Warnings, RowWarning{Line: line, Reason: reason})
}

// normalize converts a decoded row into a Candidate, or returns why the row is invalid.
func normalize(row feedRow) (Candidate, string) {
	if row.ArticleNumber == "" {
		return Candidate{}, "missing article number"
	}
	price, err := ParseDecimal(row.PurchasePrice)
	if err != nil || !price.IsPositive() {
		return Candidate{}, fmt.Sprintf("invalid price %q for article %s", row.PurchasePrice, row.ArticleNumber)
	}
	stock := 0
	if row.Stock != "" {
		stock, err = strconv.Atoi(row.Stock)
		if err != nil {
			return Candidate{}, fmt.Sprintf("invalid stock %q for article %s", row.Stock, row.ArticleNumber)
		}
	}

	c := Candidate{
		ArticleNumber:       row.ArticleNumber,
		EAN:                 optional(row.EAN),
		Price:               price,
		Stock:               stock,
		Brand:               optional(row.Brand),
		Model:               optional(row.Model),
		Width:               dimension(row.Width),
		Height:              dimension(row.Height),
		Diameter:            dimension(row.Diameter),
		LoadIndex:           optional(row.LoadIndex),
		SpeedIndex:          optional(row.SpeedIndex),
		Season:              optional(row.Season),
		VehicleType:         optional(row.VehicleType),
		RunFlat:             IsRunFlat(row.Model),
		ThreePMSF:           IsSevereWinter(row.Model),
		LabelFuelEfficiency: optional(row.LabelFuelEfficiency),
		LabelWetGrip:        optional(row.LabelWetGrip),
		LabelNoiseClass:     optional(row.LabelNoiseClass),
		EprelURL:            optional(row.EprelURL),
	}
	if n, err := strconv.Atoi(row.LabelNoise); err == nil {
		c.LabelNoise = &n
	}
	return c, ""
}

// ParseDecimal parses a feed decimal. A comma is the fractional separator;
// when present, dots are thousands separators ("1.234,50" is 1234.50).
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty decimal")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// dimension treats the feed's "0" placeholder as absent.
func dimension(s string) *string {
	if s == "0" {
		return nil
	}
	return optional(s)
}
