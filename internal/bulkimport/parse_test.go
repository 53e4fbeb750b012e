package bulkimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("name,email,registerNo\nArun,arun@tce.edu,21CS01\nPriya,priya@tce.edu,21CS02\n")

	rows, err := Parse("students.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "Arun", rows[0].Values["name"])
	assert.Equal(t, "arun@tce.edu", rows[0].Values["email"])
	assert.Equal(t, 3, rows[1].Number)
	assert.Equal(t, "Priya", rows[1].Values["name"])
}

func TestParseCSVBlankRowsConsumeNumbers(t *testing.T) {
	data := []byte("name,email\nArun,arun@tce.edu\n,\nPriya,priya@tce.edu\n")

	rows, err := Parse("students.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 4, rows[1].Number)
}

func TestParseCSVShortRecord(t *testing.T) {
	data := []byte("name,email,registerNo\nArun,arun@tce.edu\n")

	rows, err := Parse("students.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Arun", rows[0].Values["name"])
	_, ok := rows[0].Values["registerNo"]
	assert.False(t, ok)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"name", "email", "registerNo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Arun", "arun@tce.edu", "21CS01"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Priya", "priya@tce.edu", "21CS02"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("students.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "21CS01", rows[0].Values["registerNo"])
	assert.Equal(t, 3, rows[1].Number)
	assert.Equal(t, "Priya", rows[1].Values["name"])
}

func TestParseEmptyUpload(t *testing.T) {
	_, err := Parse("students.xlsx", nil)
	assert.Error(t, err)
}

func TestParseHeaderOnly(t *testing.T) {
	rows, err := Parse("students.csv", []byte("name,email\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseGarbageWorkbook(t *testing.T) {
	_, err := Parse("students.xlsx", []byte("this is not a zip archive"))
	assert.Error(t, err)
}
