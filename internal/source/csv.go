package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// ReadCSVFile reads a local CSV/TSV export. delim 0 sniffs the header line.
func ReadCSVFile(path string, delim rune) (company.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return company.RawTable{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, delim)
}

// ReadCSV parses CSV from r. delim 0 picks whichever of ',', ';' or tab occurs
// most in the header line.
func ReadCSV(r io.Reader, delim rune) (company.RawTable, error) {
	br := bufio.NewReader(r)
	if delim == 0 {
		delim = sniffDelimiter(br)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.Comma = delim
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return company.RawTable{}, ErrNoNameColumn
		}
		return company.RawTable{}, fmt.Errorf("read header: %w", err)
	}
	// strip a UTF-8 BOM left by spreadsheet exports
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return company.RawTable{}, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}
	return buildTable(header, rows)
}

func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(string(line), string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
