package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
)

// ErrSheetNotFound is returned when a requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadXLSXFile reads one worksheet of a workbook. sheetName wins over
// sheetIndex; sheetIndex is 1-based and defaults to the first sheet.
func ReadXLSXFile(p string, sheetName string, sheetIndex int) (company.RawTable, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return company.RawTable{}, fmt.Errorf("read xlsx: %w", err)
	}
	return ReadXLSX(b, sheetName, sheetIndex)
}

// ReadXLSX is ReadXLSXFile over an in-memory workbook.
func ReadXLSX(data []byte, sheetName string, sheetIndex int) (company.RawTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return company.RawTable{}, fmt.Errorf("open xlsx: %w", err)
	}
	wbXML, err := zipEntry(zr, "xl/workbook.xml")
	if err != nil {
		return company.RawTable{}, err
	}
	relsXML, err := zipEntry(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return company.RawTable{}, err
	}
	wb := workbook{sheets: parseWorkbook(wbXML), rels: parseRelationships(relsXML)}
	target, err := wb.resolve(sheetName, sheetIndex)
	if err != nil {
		return company.RawTable{}, err
	}
	sheetXML, err := zipEntry(zr, target)
	if err != nil {
		return company.RawTable{}, err
	}
	if sheetXML == nil {
		return company.RawTable{}, fmt.Errorf("%w: %s", ErrSheetNotFound, target)
	}
	sstXML, err := zipEntry(zr, "xl/sharedStrings.xml")
	if err != nil {
		return company.RawTable{}, err
	}
	rr := newSheetRowReader(sheetXML, parseSharedStrings(sstXML))
	header, ok := rr.Next()
	if !ok {
		return company.RawTable{}, ErrNoNameColumn
	}
	var rows [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return buildTable(header, rows)
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

type workbook struct {
	sheets []wbSheet
	rels   map[string]string
}

// resolve maps a sheet name or 1-based index to its ZIP entry.
func (w workbook) resolve(name string, index int) (string, error) {
	if name != "" {
		available := make([]string, 0, len(w.sheets))
		for _, s := range w.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := w.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
			available = append(available, s.Name)
		}
		return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, name, strings.Join(available, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range w.sheets {
		if s.SheetID == index {
			if rel, ok := w.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

// zipEntry returns the content of name, or nil when the entry is missing.
// A corrupt entry is an error, never an empty part.
func zipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open xlsx entry %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read xlsx entry %s: %w", name, err)
		}
		return b, nil
	}
	return nil, nil
}

func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id": // r:id
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

// eachStart calls fn for every start element of an XML document.
func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams rows of a worksheet as text cells.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	row    []string
	inRow  bool
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.row = nil
				continue
			}
			if !r.inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := colIndexFromRef(ref)
			if col < 0 {
				col = len(r.row)
			}
			for len(r.row) <= col {
				r.row = append(r.row, "")
			}
			r.row[col] = r.cellValue(typ)
		case xml.EndElement:
			if se.Name.Local == "row" {
				r.inRow = false
				return r.row, true
			}
		}
	}
}

// cellValue consumes tokens up to </c>, returning the <v> or inline <t> text.
func (r *sheetRowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// colIndexFromRef maps "C12" to 2. A ref without letters yields -1.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets such as
// "/xl/worksheets/sheet1.xml" or "worksheets/sheet1.xml" to ZIP entry names.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
