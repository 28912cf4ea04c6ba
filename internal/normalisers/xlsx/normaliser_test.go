package xlsx

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"name", "qty"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"apples", 3}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"pears", 5}))

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "Checked by finance."))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{MIMEType}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_AllSheets(t *testing.T) {
	text, err := New().Normalise(context.Background(), buildWorkbook(t))
	require.NoError(t, err)

	assert.Equal(t, "Sheet: Sheet1\nname\tqty\napples\t3\npears\t5\n\nSheet: Notes\nChecked by finance.", text)
}

func TestNormalise_EmptyContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise_InvalidWorkbook(t *testing.T) {
	_, err := New().Normalise(context.Background(), []byte("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
