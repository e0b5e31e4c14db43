package domain

// GeneralDataFromMap builds a typed GeneralData from a sanitized attribute
// map. Values are expected to already carry their coerced types; anything
// else is treated as absent.
func GeneralDataFromMap(m map[string]any) GeneralData {
	return GeneralData{
		ClienteID:    intField(m, "cliente_id"),
		CotizacionID: intField(m, "cotizacion_id"),
		HorasMaquina: floatField(m, "horas_maquina"),

		FechaInicio: stringField(m, "fecha_inicio"),
		FechaFin:    stringField(m, "fecha_fin"),

		ReunionApertura: boolField(m, "reunion_apertura"),
		ReunionCierre:   boolField(m, "reunion_cierre"),
		EnvaseDesechado: boolField(m, "envase_desechado"),

		Planta:              stringField(m, "planta"),
		ResponsableCliente:  stringField(m, "responsable_cliente"),
		EmailCliente:        stringField(m, "email_cliente"),
		TelefonoCliente:     stringField(m, "telefono_cliente"),
		MaquinaSerie:        stringField(m, "maquina_serie"),
		PropositoVisita:     stringField(m, "proposito_visita"),
		TipoLlenado:         stringField(m, "tipo_llenado"),
		TipoEnvase:          stringField(m, "tipo_envase"),
		ComentariosApertura: stringField(m, "comentarios_apertura"),
		ComentariosFinales:  stringField(m, "comentarios_finales"),
		Eficiencias:         stringField(m, "eficiencias"),
		Perdidas:            stringField(m, "perdidas"),
		FirmaClienteURL:     stringField(m, "firma_cliente_url"),
		FirmaFseURL:         stringField(m, "firma_fse_url"),
	}
}

func intField(m map[string]any, key string) *int64 {
	if v, ok := m[key].(int64); ok {
		return &v
	}
	return nil
}

func floatField(m map[string]any, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}

func stringField(m map[string]any, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}
