package repo

import (
	"context"

	"sigrep/internal/domain"
)

// ListCatalogSections returns checklist sections ordered for display. When
// activeOnly is set, disabled sections are skipped.
func (r Repo) ListCatalogSections(ctx context.Context, activeOnly bool) ([]domain.CatalogSection, error) {
	q := `SELECT id, nombre, orden, activo FROM catalogo_secciones`
	if activeOnly {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY orden, id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.CatalogSection
	for rows.Next() {
		var s domain.CatalogSection
		var activo int
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Orden, &activo); err != nil {
			return nil, err
		}
		s.Activo = activo != 0
		res = append(res, s)
	}
	return res, rows.Err()
}

// ListCatalogItems returns checklist items ordered within their section.
func (r Repo) ListCatalogItems(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error) {
	q := `SELECT id, seccion_id, descripcion, orden, activo FROM catalogo_items`
	if activeOnly {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY seccion_id, orden, id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.CatalogItem
	for rows.Next() {
		var it domain.CatalogItem
		var activo int
		if err := rows.Scan(&it.ID, &it.SeccionID, &it.Descripcion, &it.Orden, &activo); err != nil {
			return nil, err
		}
		it.Activo = activo != 0
		res = append(res, it)
	}
	return res, rows.Err()
}

// CountCatalogSections is used to decide whether seeding is needed.
func (r Repo) CountCatalogSections(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalogo_secciones`).Scan(&n)
	return n, err
}

// InsertCatalogSection inserts a section with a fixed id.
func (r Repo) InsertCatalogSection(ctx context.Context, s domain.CatalogSection) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO catalogo_secciones(id, nombre, orden, activo) VALUES (?,?,?,?)`,
		s.ID, s.Nombre, s.Orden, boolInt(s.Activo))
	return err
}

// InsertCatalogItem inserts an item with a fixed id.
func (r Repo) InsertCatalogItem(ctx context.Context, it domain.CatalogItem) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO catalogo_items(id, seccion_id, descripcion, orden, activo) VALUES (?,?,?,?,?)`,
		it.ID, it.SeccionID, it.Descripcion, it.Orden, boolInt(it.Activo))
	return err
}
