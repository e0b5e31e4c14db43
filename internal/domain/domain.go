package domain

// GeneralData holds the normalized header fields of a technical report.
// Pointer fields are nullable columns; booleans default to false.
type GeneralData struct {
	ClienteID    *int64   `json:"cliente_id,omitempty"`
	CotizacionID *int64   `json:"cotizacion_id,omitempty"`
	HorasMaquina *float64 `json:"horas_maquina,omitempty"`

	FechaInicio *string `json:"fecha_inicio,omitempty" format:"date-time"`
	FechaFin    *string `json:"fecha_fin,omitempty" format:"date-time"`

	ReunionApertura bool `json:"reunion_apertura"`
	ReunionCierre   bool `json:"reunion_cierre"`
	EnvaseDesechado bool `json:"envase_desechado"`

	Planta              *string `json:"planta,omitempty"`
	ResponsableCliente  *string `json:"responsable_cliente,omitempty"`
	EmailCliente        *string `json:"email_cliente,omitempty"`
	TelefonoCliente     *string `json:"telefono_cliente,omitempty"`
	MaquinaSerie        *string `json:"maquina_serie,omitempty"`
	PropositoVisita     *string `json:"proposito_visita,omitempty"`
	TipoLlenado         *string `json:"tipo_llenado,omitempty"`
	TipoEnvase          *string `json:"tipo_envase,omitempty"`
	ComentariosApertura *string `json:"comentarios_apertura,omitempty"`
	ComentariosFinales  *string `json:"comentarios_finales,omitempty"`
	Eficiencias         *string `json:"eficiencias,omitempty"`
	Perdidas            *string `json:"perdidas,omitempty"`
	FirmaClienteURL     *string `json:"firma_cliente_url,omitempty"`
	FirmaFseURL         *string `json:"firma_fse_url,omitempty"`
}

type Report struct {
	ID        int64  `json:"id"`
	Folio     string `json:"folio"`
	UsuarioID string `json:"usuario_id"`
	GeneralData
	Estado       string  `json:"estado" enum:"borrador,finalizado"`
	BorradorData *string `json:"borrador_data,omitempty"`
	CreatedAt    string  `json:"created_at" format:"date-time"`
	UpdatedAt    string  `json:"updated_at" format:"date-time"`

	// Joined relation fields, present on reads.
	ClienteNombre   *string `json:"cliente_nombre,omitempty"`
	ClienteEmpresa  *string `json:"cliente_empresa,omitempty"`
	IngenieroNombre *string `json:"ingeniero_nombre,omitempty"`
}

// ReportFull is a report header together with its checklist and action rows.
type ReportFull struct {
	Report
	Detalles []ReportDetail `json:"detalles"`
	Acciones []ReportAction `json:"acciones"`
}

type ReportDetail struct {
	ID               int64   `json:"id"`
	ReporteID        int64   `json:"reporte_id"`
	ItemID           int64   `json:"item_id"`
	Estado           string  `json:"estado,omitempty"`
	Comentarios      *string `json:"comentarios,omitempty"`
	EvidenciaFotoURL *string `json:"evidencia_foto_url,omitempty"`

	// From catalogo_items, present on reads.
	ItemDescripcion *string `json:"item_descripcion,omitempty"`
	SeccionID       *int64  `json:"seccion_id,omitempty"`
}

type ReportAction struct {
	ID          int64   `json:"id"`
	ReporteID   int64   `json:"reporte_id"`
	Descripcion string  `json:"descripcion"`
	TipoAccion  *string `json:"tipo_accion,omitempty"`
	Responsable *string `json:"responsable,omitempty"`
	FechaLimite *string `json:"fecha_limite,omitempty"`
	Criticidad  *string `json:"criticidad,omitempty"`
	WoNumero    *string `json:"wo_numero,omitempty"`
}

// ReportSummary is the flattened listing row served by the dashboard table.
type ReportSummary struct {
	ID              int64   `json:"id"`
	Folio           string  `json:"folio"`
	Estado          string  `json:"estado"`
	Planta          *string `json:"planta,omitempty"`
	FechaInicio     *string `json:"fecha_inicio,omitempty" format:"date-time"`
	FechaFin        *string `json:"fecha_fin,omitempty" format:"date-time"`
	CreatedAt       string  `json:"created_at" format:"date-time"`
	ClienteID       *int64  `json:"cliente_id,omitempty"`
	ClienteNombre   *string `json:"cliente_nombre,omitempty"`
	ClienteEmpresa  *string `json:"cliente_empresa,omitempty"`
	UsuarioID       string  `json:"usuario_id"`
	IngenieroNombre *string `json:"ingeniero_nombre,omitempty"`
}

type CatalogSection struct {
	ID     int64         `json:"id"`
	Nombre string        `json:"nombre"`
	Orden  int           `json:"orden"`
	Activo bool          `json:"activo"`
	Items  []CatalogItem `json:"items"`
}

type CatalogItem struct {
	ID          int64  `json:"id"`
	SeccionID   int64  `json:"seccion_id"`
	Descripcion string `json:"descripcion"`
	Orden       int    `json:"orden"`
	Activo      bool   `json:"activo"`
}

type Client struct {
	ID        int64   `json:"id"`
	Nombre    string  `json:"nombre"`
	Empresa   *string `json:"empresa,omitempty"`
	Email     *string `json:"email,omitempty"`
	Telefono  *string `json:"telefono,omitempty"`
	CreatedAt string  `json:"created_at" format:"date-time"`
}

type Quotation struct {
	ID               int64   `json:"id"`
	NumeroCotizacion string  `json:"numero_cotizacion"`
	ClienteID        *int64  `json:"cliente_id,omitempty"`
	UsuarioID        string  `json:"usuario_id"`
	FechaCreacion    string  `json:"fecha_creacion" format:"date-time"`
	Total            float64 `json:"total"`
	Estado           string  `json:"estado" enum:"pendiente,aceptada,rechazada"`
	EstatusPO        *string `json:"estatus_po,omitempty"`

	ClienteNombre   *string `json:"cliente_nombre,omitempty"`
	ClienteEmpresa  *string `json:"cliente_empresa,omitempty"`
	CreadoPorNombre *string `json:"creado_por_nombre,omitempty"`
}

type User struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Email     *string `json:"email,omitempty"`
	CreatedAt string  `json:"created_at" format:"date-time"`
}

type APIKey struct {
	ID        string `json:"id"`
	UsuarioID string `json:"usuario_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Event struct {
	ID        int64  `json:"id"`
	TS        string `json:"ts" format:"date-time"`
	Type      string `json:"type"`
	ReporteID *int64 `json:"reporte_id,omitempty"`
	ActorID   string `json:"actor_id"`
	Payload   string `json:"payload_json"`
}
