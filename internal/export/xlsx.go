package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sigrep/internal/domain"
)

var listadoHeader = []string{
	"Folio", "Estado", "Planta", "Cliente", "Empresa", "Ingeniero",
	"Fecha inicio", "Fecha fin", "Creado",
}

// WriteListado writes the dashboard listing to an XLSX workbook at path.
func WriteListado(path string, rows []domain.ReportSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reportes"
	f.SetSheetName("Sheet1", sheet)
	for i, h := range listadoHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, r := range rows {
		values := []string{
			r.Folio,
			r.Estado,
			deref(r.Planta),
			deref(r.ClienteNombre),
			deref(r.ClienteEmpresa),
			deref(r.IngenieroNombre),
			deref(r.FechaInicio),
			deref(r.FechaFin),
			r.CreatedAt,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
