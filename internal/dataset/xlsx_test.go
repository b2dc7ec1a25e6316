package dataset

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWorkbook writes a two-sheet workbook: "Notes" (sheet1) and "Data" (sheet2).
func writeWorkbook(t *testing.T) string {
	t.Helper()
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>segment</t></si><si><t>spend</t></si><si><t>visits</t></si><si><t>alpha</t></si><si><t>beta</t></si><si><t>note</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>5</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2" t="s"><v>3</v></c><c r="B2"><v>10.5</v></c><c r="C2"><v>3</v></c></row>
<row r="3"><c r="A3" t="s"><v>4</v></c><c r="C3"><v>4</v></c></row>
<row r="4"><c r="A4" t="inlineStr"><is><t>gamma</t></is></c><c r="B4"><v>30</v></c><c r="C4"><v>5</v></c></row>
</sheetData></worksheet>`,
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return path
}

func TestLoadXLSXByName(t *testing.T) {
	path := writeWorkbook(t)
	f, err := LoadFile(path, LoadOptions{Sheet: "data"})
	require.NoError(t, err)

	assert.Equal(t, "book.xlsx", f.Name)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"spend", "visits"}, f.NumericColumns())
	assert.Equal(t, []string{"segment"}, f.CategoricalColumns())

	seg, ok := f.Column("segment")
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, seg.Text)

	spend, ok := f.Column("spend")
	require.True(t, ok)
	assert.Equal(t, 10.5, spend.Num[0])
	assert.True(t, spend.Num[1] != spend.Num[1], "gap cell reads as missing")
	assert.Equal(t, 30.0, spend.Num[2])
}

func TestLoadXLSXByIndex(t *testing.T) {
	path := writeWorkbook(t)
	f, err := LoadXLSX(path, LoadOptions{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())

	// the first sheet holds only a header and no numbers
	_, err = LoadXLSX(path, LoadOptions{})
	assert.ErrorIs(t, err, ErrEmptyData)

	_, err = LoadXLSX(path, LoadOptions{Sheet: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Notes, Data")

	_, err = LoadXLSX(path, LoadOptions{SheetIndex: 9})
	assert.ErrorIs(t, err, ErrEmptyData)
}

func TestXLSXHelpers(t *testing.T) {
	for in, want := range map[string]string{
		"/xl/worksheets/sheet1.xml": "xl/worksheets/sheet1.xml",
		"xl/worksheets/sheet1.xml":  "xl/worksheets/sheet1.xml",
		"worksheets/sheet1.xml":     "xl/worksheets/sheet1.xml",
		"/styles.xml":               "xl/styles.xml",
	} {
		assert.Equal(t, want, normalizeRelPath(in), in)
	}
	assert.Equal(t, 0, colIndexFromRef("A1"))
	assert.Equal(t, 2, colIndexFromRef("C12"))
	assert.Equal(t, 27, colIndexFromRef("AB3"))
	assert.Equal(t, -1, colIndexFromRef("12"))
}
