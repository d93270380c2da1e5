package parser_test

import (
	"archive/zip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/leasemap/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadFileCSV(t *testing.T) {
	p := writeFile(t, "leases.csv", "latitude,longitude,leasedSF,company\n"+
		"40.75,-73.98,\"12,500\",Acme\n"+
		"40.76,-73.97,800,Globex\n")
	df, err := parser.LoadFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if df.Nrow() != 2 || df.Ncol() != 4 {
		t.Fatalf("dims = %dx%d, want 2x4", df.Nrow(), df.Ncol())
	}
	sf := df.Col("leasedSF").Records()
	if sf[0] != "12,500" {
		t.Fatalf("leasedSF[0] = %q, want raw string", sf[0])
	}
}

func TestLoadFileTSV(t *testing.T) {
	p := writeFile(t, "leases.tsv", "lat\tlng\tsf\n40.7\t-73.9\t100\n")
	df, err := parser.LoadFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := df.Names()
	if len(names) != 3 || names[1] != "lng" {
		t.Fatalf("names = %v", names)
	}
}

func TestLoadFileCustomDelimiter(t *testing.T) {
	p := writeFile(t, "leases.csv", "lat;lon;sf\n40,7;-73,9;1.000\n")
	df, err := parser.LoadFile(p, parser.Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := df.Col("lat").Records()[0]; got != "40,7" {
		t.Fatalf("lat = %q", got)
	}
}

func TestReadRecordsTidiesHeaderAndPadsRows(t *testing.T) {
	p := writeFile(t, "messy.csv", "\uFEFF address , ,address\n1 Main St\n")
	recs, err := parser.ReadRecords(p, parser.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"address", "col_2", "address_2"}
	for i, w := range want {
		if recs[0][i] != w {
			t.Fatalf("header[%d] = %q, want %q (header %v)", i, recs[0][i], w, recs[0])
		}
	}
	if len(recs[1]) != 3 {
		t.Fatalf("row width = %d, want 3", len(recs[1]))
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := parser.LoadFile(filepath.Join(t.TempDir(), "nope.csv"), parser.Options{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	p := writeFile(t, "notes.txt", "hello")
	if _, err := parser.LoadFile(p, parser.Options{}); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if parser.Supported("notes.txt") {
		t.Fatalf("txt should not be supported")
	}
	if !parser.Supported("LEASES.XLSX") {
		t.Fatalf("xlsx should be supported")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	if _, err := parser.LoadFile(p, parser.Options{}); !errors.Is(err, parser.ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

// writeWorkbook builds a two-sheet workbook: "Notes" first, "Leases" second.
func writeWorkbook(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "leases.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	entries := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Leases" sheetId="2" r:id="rId2"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>latitude</t></si><si><t>longitude</t></si><si><t>leasedSF</t></si><si><t>Acme Corp</t></si><si><t>note</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>4</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c><c r="D1" t="inlineStr"><is><t>company</t></is></c></row>
<row r="2"><c r="A2"><v>40.75</v></c><c r="B2"><v>-73.98</v></c><c r="C2"><v>12500</v></c><c r="D2" t="s"><v>3</v></c></row>
<row r="3"><c r="A3"><v>40.76</v></c><c r="B3"><v>-73.97</v></c></row>
</sheetData></worksheet>`,
	}
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}

func TestLoadFileXLSXSheetSelection(t *testing.T) {
	p := writeWorkbook(t)
	for _, tc := range []struct {
		name string
		opt  parser.Options
	}{
		{"by name", parser.Options{SheetName: "leases"}},
		{"by index", parser.Options{SheetIndex: 2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			df, err := parser.LoadFile(p, tc.opt)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if df.Nrow() != 2 || df.Ncol() != 4 {
				t.Fatalf("dims = %dx%d, want 2x4 (names %v)", df.Nrow(), df.Ncol(), df.Names())
			}
			if got := df.Col("company").Records()[0]; got != "Acme Corp" {
				t.Fatalf("company = %q", got)
			}
			if got := df.Col("leasedSF").Records()[1]; got != "" {
				t.Fatalf("padded cell = %q, want empty", got)
			}
		})
	}
}

func TestLoadFileXLSXDefaultsToFirstSheet(t *testing.T) {
	recs, err := parser.ReadRecords(writeWorkbook(t), parser.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0][0] != "note" {
		t.Fatalf("records = %v", recs)
	}
}

func TestLoadFileXLSXUnknownSheet(t *testing.T) {
	if _, err := parser.LoadFile(writeWorkbook(t), parser.Options{SheetName: "Missing"}); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}
