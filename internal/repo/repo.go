package repo

import (
	"context"
	"database/sql"
	"errors"

	"sigrep/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func reportArgs(r domain.Report) []any {
	return []any{
		r.Folio, nullableIntPtr(r.ClienteID), nullableIntPtr(r.CotizacionID), nullable(r.UsuarioID),
		nullableFloatPtr(r.HorasMaquina), nullableStringPtr(r.FechaInicio), nullableStringPtr(r.FechaFin),
		boolInt(r.ReunionApertura), boolInt(r.ReunionCierre), boolInt(r.EnvaseDesechado),
		nullableStringPtr(r.Planta), nullableStringPtr(r.ResponsableCliente), nullableStringPtr(r.EmailCliente), nullableStringPtr(r.TelefonoCliente),
		nullableStringPtr(r.MaquinaSerie), nullableStringPtr(r.PropositoVisita), nullableStringPtr(r.TipoLlenado), nullableStringPtr(r.TipoEnvase),
		nullableStringPtr(r.ComentariosApertura), nullableStringPtr(r.ComentariosFinales), nullableStringPtr(r.Eficiencias), nullableStringPtr(r.Perdidas),
		nullableStringPtr(r.FirmaClienteURL), nullableStringPtr(r.FirmaFseURL),
		nullableStringPtr(r.BorradorData), r.Estado, r.CreatedAt, r.UpdatedAt,
	}
}

const insertReportSQL = `INSERT INTO reportes_tecnicos(
folio, cliente_id, cotizacion_id, usuario_id,
horas_maquina, fecha_inicio, fecha_fin,
reunion_apertura, reunion_cierre, envase_desechado,
planta, responsable_cliente, email_cliente, telefono_cliente,
maquina_serie, proposito_visita, tipo_llenado, tipo_envase,
comentarios_apertura, comentarios_finales, eficiencias, perdidas,
firma_cliente_url, firma_fse_url,
borrador_data, estado, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

// InsertReportTx inserts a report header and returns its generated id.
func (r Repo) InsertReportTx(ctx context.Context, tx *sql.Tx, rep domain.Report) (int64, error) {
	res, err := tx.ExecContext(ctx, insertReportSQL, reportArgs(rep)...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateDraftTx overwrites an existing draft header in place. The estado is
// forced back to "borrador"; last write wins.
func (r Repo) UpdateDraftTx(ctx context.Context, tx *sql.Tx, id int64, rep domain.Report) error {
	res, err := tx.ExecContext(ctx, `UPDATE reportes_tecnicos SET
cliente_id=?, cotizacion_id=?, usuario_id=?,
horas_maquina=?, fecha_inicio=?, fecha_fin=?,
reunion_apertura=?, reunion_cierre=?, envase_desechado=?,
planta=?, responsable_cliente=?, email_cliente=?, telefono_cliente=?,
maquina_serie=?, proposito_visita=?, tipo_llenado=?, tipo_envase=?,
comentarios_apertura=?, comentarios_finales=?, eficiencias=?, perdidas=?,
firma_cliente_url=?, firma_fse_url=?,
borrador_data=?, estado='borrador', updated_at=?
WHERE id=?`,
		nullableIntPtr(rep.ClienteID), nullableIntPtr(rep.CotizacionID), nullable(rep.UsuarioID),
		nullableFloatPtr(rep.HorasMaquina), nullableStringPtr(rep.FechaInicio), nullableStringPtr(rep.FechaFin),
		boolInt(rep.ReunionApertura), boolInt(rep.ReunionCierre), boolInt(rep.EnvaseDesechado),
		nullableStringPtr(rep.Planta), nullableStringPtr(rep.ResponsableCliente), nullableStringPtr(rep.EmailCliente), nullableStringPtr(rep.TelefonoCliente),
		nullableStringPtr(rep.MaquinaSerie), nullableStringPtr(rep.PropositoVisita), nullableStringPtr(rep.TipoLlenado), nullableStringPtr(rep.TipoEnvase),
		nullableStringPtr(rep.ComentariosApertura), nullableStringPtr(rep.ComentariosFinales), nullableStringPtr(rep.Eficiencias), nullableStringPtr(rep.Perdidas),
		nullableStringPtr(rep.FirmaClienteURL), nullableStringPtr(rep.FirmaFseURL),
		nullableStringPtr(rep.BorradorData), rep.UpdatedAt, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectReportJoined = `SELECT r.id, r.folio, r.cliente_id, r.cotizacion_id, r.usuario_id,
r.horas_maquina, r.fecha_inicio, r.fecha_fin,
r.reunion_apertura, r.reunion_cierre, r.envase_desechado,
r.planta, r.responsable_cliente, r.email_cliente, r.telefono_cliente,
r.maquina_serie, r.proposito_visita, r.tipo_llenado, r.tipo_envase,
r.comentarios_apertura, r.comentarios_finales, r.eficiencias, r.perdidas,
r.firma_cliente_url, r.firma_fse_url,
r.borrador_data, r.estado, r.created_at, r.updated_at,
c.nombre, c.empresa, u.nombre
FROM reportes_tecnicos r
LEFT JOIN clientes c ON c.id = r.cliente_id
LEFT JOIN usuarios u ON u.id = r.usuario_id`

// GetReport returns a report header with joined client and engineer names.
func (r Repo) GetReport(ctx context.Context, id int64) (domain.Report, error) {
	row := r.DB.QueryRowContext(ctx, selectReportJoined+` WHERE r.id=?`, id)
	return scanJoinedReport(row)
}

// ListReports returns all report headers with joined names, newest first.
func (r Repo) ListReports(ctx context.Context) ([]domain.Report, error) {
	rows, err := r.DB.QueryContext(ctx, selectReportJoined+` ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Report
	for rows.Next() {
		rep, err := scanJoinedReport(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}

func scanJoinedReport(row rowScanner) (domain.Report, error) {
	var r domain.Report
	var (
		clienteID, cotizacionID           sql.NullInt64
		horasMaquina                      sql.NullFloat64
		usuarioID                         sql.NullString
		fechaInicio, fechaFin             sql.NullString
		reunionApertura, reunionCierre    int
		envaseDesechado                   int
		planta, responsable, email, tel   sql.NullString
		serie, proposito, llenado, envase sql.NullString
		comApertura, comFinales           sql.NullString
		eficiencias, perdidas             sql.NullString
		firmaCliente, firmaFse            sql.NullString
		borrador                          sql.NullString
		clienteNombre, clienteEmpresa     sql.NullString
		ingenieroNombre                   sql.NullString
	)
	err := row.Scan(&r.ID, &r.Folio, &clienteID, &cotizacionID, &usuarioID,
		&horasMaquina, &fechaInicio, &fechaFin,
		&reunionApertura, &reunionCierre, &envaseDesechado,
		&planta, &responsable, &email, &tel,
		&serie, &proposito, &llenado, &envase,
		&comApertura, &comFinales, &eficiencias, &perdidas,
		&firmaCliente, &firmaFse,
		&borrador, &r.Estado, &r.CreatedAt, &r.UpdatedAt,
		&clienteNombre, &clienteEmpresa, &ingenieroNombre)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	if err != nil {
		return r, err
	}
	if usuarioID.Valid {
		r.UsuarioID = usuarioID.String
	}
	r.ClienteID = nullInt(clienteID)
	r.CotizacionID = nullInt(cotizacionID)
	r.HorasMaquina = nullFloat(horasMaquina)
	r.FechaInicio = nullString(fechaInicio)
	r.FechaFin = nullString(fechaFin)
	r.ReunionApertura = reunionApertura != 0
	r.ReunionCierre = reunionCierre != 0
	r.EnvaseDesechado = envaseDesechado != 0
	r.Planta = nullString(planta)
	r.ResponsableCliente = nullString(responsable)
	r.EmailCliente = nullString(email)
	r.TelefonoCliente = nullString(tel)
	r.MaquinaSerie = nullString(serie)
	r.PropositoVisita = nullString(proposito)
	r.TipoLlenado = nullString(llenado)
	r.TipoEnvase = nullString(envase)
	r.ComentariosApertura = nullString(comApertura)
	r.ComentariosFinales = nullString(comFinales)
	r.Eficiencias = nullString(eficiencias)
	r.Perdidas = nullString(perdidas)
	r.FirmaClienteURL = nullString(firmaCliente)
	r.FirmaFseURL = nullString(firmaFse)
	r.BorradorData = nullString(borrador)
	r.ClienteNombre = nullString(clienteNombre)
	r.ClienteEmpresa = nullString(clienteEmpresa)
	r.IngenieroNombre = nullString(ingenieroNombre)
	return r, nil
}

// InsertDetailsTx batch-inserts detail rows for a report.
func (r Repo) InsertDetailsTx(ctx context.Context, tx *sql.Tx, reporteID int64, details []domain.ReportDetail) error {
	for _, d := range details {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reporte_detalles(reporte_id, item_id, estado, comentarios, evidencia_foto_url)
VALUES (?,?,?,?,?)`,
			reporteID, d.ItemID, nullable(d.Estado), nullableStringPtr(d.Comentarios), nullableStringPtr(d.EvidenciaFotoURL)); err != nil {
			return err
		}
	}
	return nil
}

// InsertActionsTx batch-inserts action rows for a report.
func (r Repo) InsertActionsTx(ctx context.Context, tx *sql.Tx, reporteID int64, actions []domain.ReportAction) error {
	for _, a := range actions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reporte_acciones(reporte_id, descripcion, tipo_accion, responsable, fecha_limite, criticidad, wo_numero)
VALUES (?,?,?,?,?,?,?)`,
			reporteID, a.Descripcion, nullableStringPtr(a.TipoAccion), nullableStringPtr(a.Responsable),
			nullableStringPtr(a.FechaLimite), nullableStringPtr(a.Criticidad), nullableStringPtr(a.WoNumero)); err != nil {
			return err
		}
	}
	return nil
}

// ListReportDetails returns detail rows with their catalog item expanded.
func (r Repo) ListReportDetails(ctx context.Context, reporteID int64) ([]domain.ReportDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT d.id, d.reporte_id, d.item_id, COALESCE(d.estado,''), d.comentarios, d.evidencia_foto_url,
i.descripcion, i.seccion_id
FROM reporte_detalles d
LEFT JOIN catalogo_items i ON i.id = d.item_id
WHERE d.reporte_id=?
ORDER BY d.id`, reporteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ReportDetail
	for rows.Next() {
		var d domain.ReportDetail
		var comentarios, evidencia, descripcion sql.NullString
		var seccionID sql.NullInt64
		if err := rows.Scan(&d.ID, &d.ReporteID, &d.ItemID, &d.Estado, &comentarios, &evidencia, &descripcion, &seccionID); err != nil {
			return nil, err
		}
		d.Comentarios = nullString(comentarios)
		d.EvidenciaFotoURL = nullString(evidencia)
		d.ItemDescripcion = nullString(descripcion)
		d.SeccionID = nullInt(seccionID)
		res = append(res, d)
	}
	return res, rows.Err()
}

// ListReportActions returns action rows for a report.
func (r Repo) ListReportActions(ctx context.Context, reporteID int64) ([]domain.ReportAction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, reporte_id, descripcion, tipo_accion, responsable, fecha_limite, criticidad, wo_numero
FROM reporte_acciones WHERE reporte_id=? ORDER BY id`, reporteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ReportAction
	for rows.Next() {
		var a domain.ReportAction
		var tipo, responsable, fecha, criticidad, wo sql.NullString
		if err := rows.Scan(&a.ID, &a.ReporteID, &a.Descripcion, &tipo, &responsable, &fecha, &criticidad, &wo); err != nil {
			return nil, err
		}
		a.TipoAccion = nullString(tipo)
		a.Responsable = nullString(responsable)
		a.FechaLimite = nullString(fecha)
		a.Criticidad = nullString(criticidad)
		a.WoNumero = nullString(wo)
		res = append(res, a)
	}
	return res, rows.Err()
}
