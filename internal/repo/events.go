package repo

import (
	"context"
	"database/sql"

	"sigrep/internal/domain"
)

// LatestEvents returns the newest audit events, optionally filtered by type.
func (r Repo) LatestEvents(ctx context.Context, limit int, evtType string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, ts, type, reporte_id, actor_id, payload_json FROM events`
	var args []any
	if evtType != "" {
		query += ` WHERE type=?`
		args = append(args, evtType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		var reporteID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &reporteID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		e.ReporteID = nullInt(reporteID)
		res = append(res, e)
	}
	return res, rows.Err()
}
