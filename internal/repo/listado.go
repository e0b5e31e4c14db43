package repo

import (
	"context"
	"database/sql"
	"strings"

	"sigrep/internal/domain"
)

// ListadoView reads the flattened listing from the reporting view. Callers
// fall back to ListadoFallback when the view is missing or unreadable.
func (r Repo) ListadoView(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, folio, estado, planta,
fecha_inicio, fecha_fin, created_at,
cliente_id, cliente_nombre, cliente_empresa,
usuario_id, ingeniero_nombre
FROM vw_reportes_tecnicos_listado
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListado(rows)
}

// ListadoFallback builds the same projection with explicit joins against the
// base tables.
func (r Repo) ListadoFallback(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT r.id, r.folio, r.estado, r.planta,
r.fecha_inicio, r.fecha_fin, r.created_at,
r.cliente_id, c.nombre, c.empresa,
r.usuario_id, u.nombre
FROM reportes_tecnicos r
LEFT JOIN clientes c ON c.id = r.cliente_id
LEFT JOIN usuarios u ON u.id = r.usuario_id
ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListado(rows)
}

func scanListado(rows *sql.Rows) ([]domain.ReportSummary, error) {
	var res []domain.ReportSummary
	for rows.Next() {
		var s domain.ReportSummary
		var clienteID sql.NullInt64
		var planta, fechaInicio, fechaFin sql.NullString
		var clienteNombre, clienteEmpresa sql.NullString
		var usuarioID, ingeniero sql.NullString
		if err := rows.Scan(&s.ID, &s.Folio, &s.Estado, &planta,
			&fechaInicio, &fechaFin, &s.CreatedAt,
			&clienteID, &clienteNombre, &clienteEmpresa,
			&usuarioID, &ingeniero); err != nil {
			return nil, err
		}
		s.Planta = nullString(planta)
		s.FechaInicio = nullString(fechaInicio)
		s.FechaFin = nullString(fechaFin)
		s.ClienteID = nullInt(clienteID)
		s.ClienteNombre = nullString(clienteNombre)
		s.ClienteEmpresa = nullString(clienteEmpresa)
		if usuarioID.Valid {
			s.UsuarioID = usuarioID.String
		}
		s.IngenieroNombre = nullString(ingeniero)
		res = append(res, s)
	}
	return res, rows.Err()
}

// IsPermissionDenied reports whether a listing error came from the database
// refusing access rather than from the view being absent or broken.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") ||
		strings.Contains(msg, "not authorized") ||
		strings.Contains(msg, "42501")
}
