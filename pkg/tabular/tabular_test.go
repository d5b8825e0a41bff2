package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "\xef\xbb\xbfProduct_ID,name,price\nP1,Paracetamol,3.50\n\nP2,\"Amoxicillin, 250mg\",7\n"

	table, err := Read("catalog.CSV", strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, table.Has("product_id"))
	assert.Equal(t, []string{"unit"}, table.Missing("product_id", "unit"))
	require.Len(t, table.Rows, 2, "空行被跳过")

	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, "P1", table.Get(table.Rows[0], "product_id"))
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, "Amoxicillin, 250mg", table.Get(table.Rows[1], "name"))
	assert.Equal(t, "", table.Get(table.Rows[1], "unit"))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"product_id", "name", "price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"P1", "Paracetamol", "3.5"}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	table, err := Read("catalog.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Paracetamol", table.Get(table.Rows[0], "name"))
	assert.Equal(t, 2, table.Rows[0].Line)
}

func TestReadErrors(t *testing.T) {
	_, err := Read("catalog.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read("catalog.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)
}
