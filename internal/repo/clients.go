package repo

import (
	"context"
	"database/sql"

	"sigrep/internal/domain"
)

// ListClients returns every client ordered by name.
func (r Repo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, nombre, empresa, email, telefono, created_at
FROM clientes ORDER BY nombre, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Client
	for rows.Next() {
		var c domain.Client
		var empresa, email, telefono sql.NullString
		if err := rows.Scan(&c.ID, &c.Nombre, &empresa, &email, &telefono, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Empresa = nullString(empresa)
		c.Email = nullString(email)
		c.Telefono = nullString(telefono)
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	var c domain.Client
	var empresa, email, telefono sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id, nombre, empresa, email, telefono, created_at
FROM clientes WHERE id=?`, id).Scan(&c.ID, &c.Nombre, &empresa, &email, &telefono, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	c.Empresa = nullString(empresa)
	c.Email = nullString(email)
	c.Telefono = nullString(telefono)
	return c, nil
}

func (r Repo) InsertClient(ctx context.Context, c domain.Client) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO clientes(nombre, empresa, email, telefono, created_at)
VALUES (?,?,?,?,?)`,
		c.Nombre, nullableStringPtr(c.Empresa), nullableStringPtr(c.Email), nullableStringPtr(c.Telefono), c.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuotations returns quotations with client and author names joined,
// newest first.
func (r Repo) ListQuotations(ctx context.Context) ([]domain.Quotation, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT q.id, q.numero_cotizacion, q.cliente_id, q.usuario_id,
q.fecha_creacion, q.total, q.estado, q.estatus_po,
c.nombre, c.empresa, u.nombre
FROM cotizaciones q
LEFT JOIN clientes c ON c.id = q.cliente_id
LEFT JOIN usuarios u ON u.id = q.usuario_id
ORDER BY q.fecha_creacion DESC, q.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Quotation
	for rows.Next() {
		var q domain.Quotation
		var clienteID sql.NullInt64
		var usuarioID, estatusPO sql.NullString
		var clienteNombre, clienteEmpresa, creadoPor sql.NullString
		if err := rows.Scan(&q.ID, &q.NumeroCotizacion, &clienteID, &usuarioID,
			&q.FechaCreacion, &q.Total, &q.Estado, &estatusPO,
			&clienteNombre, &clienteEmpresa, &creadoPor); err != nil {
			return nil, err
		}
		q.ClienteID = nullInt(clienteID)
		if usuarioID.Valid {
			q.UsuarioID = usuarioID.String
		}
		q.EstatusPO = nullString(estatusPO)
		q.ClienteNombre = nullString(clienteNombre)
		q.ClienteEmpresa = nullString(clienteEmpresa)
		q.CreadoPorNombre = nullString(creadoPor)
		res = append(res, q)
	}
	return res, rows.Err()
}

func (r Repo) InsertQuotation(ctx context.Context, q domain.Quotation) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO cotizaciones(numero_cotizacion, cliente_id, usuario_id, fecha_creacion, total, estado, estatus_po)
VALUES (?,?,?,?,?,?,?)`,
		q.NumeroCotizacion, nullableIntPtr(q.ClienteID), nullable(q.UsuarioID),
		q.FechaCreacion, q.Total, q.Estado, nullableStringPtr(q.EstatusPO))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EnsureUserTx registers a user id on first sight so report rows can
// reference it. Existing rows are left untouched.
func (r Repo) EnsureUserTx(ctx context.Context, tx *sql.Tx, u domain.User) error {
	_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO usuarios(id, nombre, email, created_at)
VALUES (?,?,?,?)`, u.ID, u.Nombre, nullableStringPtr(u.Email), u.CreatedAt)
	return err
}

// EnsureUser is the non-transactional variant of EnsureUserTx.
func (r Repo) EnsureUser(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `INSERT OR IGNORE INTO usuarios(id, nombre, email, created_at)
VALUES (?,?,?,?)`, u.ID, u.Nombre, nullableStringPtr(u.Email), u.CreatedAt)
	return err
}

