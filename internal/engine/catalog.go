package engine

import (
	"context"

	"sigrep/internal/domain"
)

// Catalog returns active checklist sections with their items nested. Items
// are not filtered on activo; disabled ones stay visible so historical
// checklists keep resolving.
func (e Engine) Catalog(ctx context.Context) ([]domain.CatalogSection, error) {
	sections, err := e.Repo.ListCatalogSections(ctx, true)
	if err != nil {
		return nil, err
	}
	items, err := e.Repo.ListCatalogItems(ctx, false)
	if err != nil {
		return nil, err
	}
	bySection := map[int64][]domain.CatalogItem{}
	for _, it := range items {
		bySection[it.SeccionID] = append(bySection[it.SeccionID], it)
	}
	for i := range sections {
		sections[i].Items = bySection[sections[i].ID]
		if sections[i].Items == nil {
			sections[i].Items = []domain.CatalogItem{}
		}
	}
	return sections, nil
}

// SeedCatalog loads the built-in service checklist when the catalog is empty.
// Running it against a populated catalog is a no-op.
func (e Engine) SeedCatalog(ctx context.Context) (bool, error) {
	n, err := e.Repo.CountCatalogSections(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	for _, s := range defaultSections {
		if err := e.Repo.InsertCatalogSection(ctx, s); err != nil {
			return false, err
		}
	}
	for _, it := range defaultItems {
		if err := e.Repo.InsertCatalogItem(ctx, it); err != nil {
			return false, err
		}
	}
	return true, nil
}

var defaultSections = []domain.CatalogSection{
	{ID: 1, Nombre: "Sistema de llenado", Orden: 1, Activo: true},
	{ID: 2, Nombre: "Sistema CIP y sanitizado", Orden: 2, Activo: true},
	{ID: 3, Nombre: "Transporte y manejo de envase", Orden: 3, Activo: true},
	{ID: 4, Nombre: "Control y electrónica", Orden: 4, Activo: true},
	{ID: 5, Nombre: "Seguridad", Orden: 5, Activo: true},
}

var defaultItems = []domain.CatalogItem{
	{ID: 1, SeccionID: 1, Descripcion: "Válvulas de llenado sin fuga", Orden: 1, Activo: true},
	{ID: 2, SeccionID: 1, Descripcion: "Nivel de llenado dentro de especificación", Orden: 2, Activo: true},
	{ID: 3, SeccionID: 1, Descripcion: "Presión de tanque estable", Orden: 3, Activo: true},
	{ID: 4, SeccionID: 2, Descripcion: "Ciclo CIP completo sin alarmas", Orden: 1, Activo: true},
	{ID: 5, SeccionID: 2, Descripcion: "Concentración de sanitizante verificada", Orden: 2, Activo: true},
	{ID: 6, SeccionID: 3, Descripcion: "Guías de transportador ajustadas al envase", Orden: 1, Activo: true},
	{ID: 7, SeccionID: 3, Descripcion: "Sin caída de envase en transferencias", Orden: 2, Activo: true},
	{ID: 8, SeccionID: 4, Descripcion: "Sensores de posición calibrados", Orden: 1, Activo: true},
	{ID: 9, SeccionID: 4, Descripcion: "HMI sin alarmas activas", Orden: 2, Activo: true},
	{ID: 10, SeccionID: 5, Descripcion: "Paros de emergencia funcionales", Orden: 1, Activo: true},
	{ID: 11, SeccionID: 5, Descripcion: "Guardas y micro-switches en su lugar", Orden: 2, Activo: true},
}
