package export_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sigrep/internal/domain"
	"sigrep/internal/export"
)

func TestWriteListado(t *testing.T) {
	cliente := "Planta Norte"
	rows := []domain.ReportSummary{
		{ID: 1, Folio: "TSR-1704067200000", Estado: "finalizado", ClienteNombre: &cliente, CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: 2, Folio: "TSR-DRAFT-1704067300000", Estado: "borrador", CreatedAt: "2024-01-01T00:01:40Z"},
	}

	path := filepath.Join(t.TempDir(), "reportes.xlsx")
	require.NoError(t, export.WriteListado(path, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Reportes", "A1")
	require.NoError(t, err)
	require.Equal(t, "Folio", header)

	folio, err := f.GetCellValue("Reportes", "A2")
	require.NoError(t, err)
	require.Equal(t, "TSR-1704067200000", folio)

	nombre, err := f.GetCellValue("Reportes", "D2")
	require.NoError(t, err)
	require.Equal(t, "Planta Norte", nombre)

	estado, err := f.GetCellValue("Reportes", "B3")
	require.NoError(t, err)
	require.Equal(t, "borrador", estado)
}
