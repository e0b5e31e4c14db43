package sanitize

// GeneralData applies the per-field coercions for a report header payload and
// returns a map with exactly the header schema. It is the single normalization
// boundary before any write to reportes_tecnicos: every field comes out either
// correctly typed or nil (booleans default to false), never an empty string.
func GeneralData(dg map[string]any) map[string]any {
	out := map[string]any{
		// identifiers
		"cliente_id":    derefInt(IntOrNull(dg["cliente_id"])),
		"cotizacion_id": derefInt(IntOrNull(dg["cotizacion_id"])),

		// numeric
		"horas_maquina": derefFloat(NumberOrNull(dg["horas_maquina"])),

		// timestamps
		"fecha_inicio": derefString(DateOrNull(dg["fecha_inicio"])),
		"fecha_fin":    derefString(DateOrNull(dg["fecha_fin"])),

		// booleans
		"reunion_apertura": BoolOrFalse(dg["reunion_apertura"]),
		"reunion_cierre":   BoolOrFalse(dg["reunion_cierre"]),
		"envase_desechado": BoolOrFalse(dg["envase_desechado"]),
	}
	for _, k := range textFields {
		out[k] = EmptyToNull(dg[k])
	}
	return out
}

var textFields = []string{
	"planta",
	"responsable_cliente",
	"email_cliente",
	"telefono_cliente",
	"maquina_serie",
	"proposito_visita",
	"tipo_llenado",
	"tipo_envase",
	"comentarios_apertura",
	"comentarios_finales",
	"eficiencias",
	"perdidas",
	"firma_cliente_url",
	"firma_fse_url",
}

func derefInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
