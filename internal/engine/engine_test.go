package engine_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sigrep/internal/config"
	"sigrep/internal/db"
	"sigrep/internal/domain"
	"sigrep/internal/engine"
	"sigrep/internal/migrate"
	"sigrep/internal/repo"
)

type testEnv struct {
	Engine    engine.Engine
	Ctx       context.Context
	ClienteID int64
}

var testIdentity = engine.Identity{ID: "user-1", Nombre: "Ing. Prueba"}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	if _, err := eng.SeedCatalog(ctx); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	clienteID, err := eng.Repo.InsertClient(ctx, domain.Client{
		Nombre:    "Planta Norte",
		CreatedAt: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return testEnv{Engine: eng, Ctx: ctx, ClienteID: clienteID}
}

func TestCreateReportSanitizesHeader(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: " 1 ",
		DatosGenerales: map[string]any{
			"planta":           "",
			"horas_maquina":    "3.7",
			"reunion_apertura": "true",
			"fecha_inicio":     "2024-01-15",
		},
		Detalles: []engine.DetailRow{
			{ItemID: "7", Estado: "ok"},
			{ItemID: "abc", Estado: "nok"},
		},
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if rep.Estado != "finalizado" {
		t.Fatalf("estado = %q", rep.Estado)
	}
	if !strings.HasPrefix(rep.Folio, "TSR-") || strings.Contains(rep.Folio, "DRAFT") {
		t.Fatalf("unexpected folio %q", rep.Folio)
	}
	if rep.Planta != nil {
		t.Fatalf("expected planta nil, got %q", *rep.Planta)
	}
	if rep.HorasMaquina == nil || *rep.HorasMaquina != 3.7 {
		t.Fatalf("horas_maquina = %v", rep.HorasMaquina)
	}
	if !rep.ReunionApertura {
		t.Fatalf("expected reunion_apertura true")
	}
	if rep.FechaInicio == nil || *rep.FechaInicio != "2024-01-15T00:00:00Z" {
		t.Fatalf("fecha_inicio = %v", rep.FechaInicio)
	}
	if len(rep.Detalles) != 1 || rep.Detalles[0].ItemID != 7 {
		t.Fatalf("expected single detail for item 7, got %+v", rep.Detalles)
	}
}

func TestCreateReportRequiresCliente(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity: testIdentity,
	})
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required error, got %v", err)
	}
	_, err = env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: "not-a-number",
	})
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required error for bad id, got %v", err)
	}
}

func TestCreateReportEmptyChildren(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if len(rep.Detalles) != 0 || len(rep.Acciones) != 0 {
		t.Fatalf("expected no child rows, got %d/%d", len(rep.Detalles), len(rep.Acciones))
	}
	if rep.Estado != "finalizado" {
		t.Fatalf("estado = %q", rep.Estado)
	}
}

func TestCreateReportCierreOverrides(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
		DatosGenerales: map[string]any{
			"comentarios_finales": "from general",
			"eficiencias":         "92%",
		},
		Cierre: map[string]any{
			"comentarios_finales": "from cierre",
			"perdidas":            "minimal",
		},
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if rep.ComentariosFinales == nil || *rep.ComentariosFinales != "from cierre" {
		t.Fatalf("comentarios_finales = %v", rep.ComentariosFinales)
	}
	if rep.Eficiencias == nil || *rep.Eficiencias != "92%" {
		t.Fatalf("eficiencias = %v", rep.Eficiencias)
	}
	if rep.Perdidas == nil || *rep.Perdidas != "minimal" {
		t.Fatalf("perdidas = %v", rep.Perdidas)
	}
}

func TestCreateReportCierreNullKeepsHeaderValue(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
		DatosGenerales: map[string]any{
			"comentarios_finales": "from general",
		},
		Cierre: map[string]any{
			"comentarios_finales": nil,
		},
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if rep.ComentariosFinales == nil || *rep.ComentariosFinales != "from general" {
		t.Fatalf("comentarios_finales = %v", rep.ComentariosFinales)
	}
}

func TestCreateReportActionMapping(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
		Acciones: []engine.ActionRow{
			{Descripcion: "Cambiar sello", Tipo: "correctiva", Fecha: "2024-02-01", Wo: "WO-77"},
			{Descripcion: ""},
		},
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	// Rows are mapped as submitted; an empty descripcion is not filtered.
	if len(rep.Acciones) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(rep.Acciones))
	}
	a := rep.Acciones[0]
	if a.TipoAccion == nil || *a.TipoAccion != "correctiva" {
		t.Fatalf("tipo_accion = %v", a.TipoAccion)
	}
	if a.FechaLimite == nil || *a.FechaLimite != "2024-02-01" {
		t.Fatalf("fecha_limite = %v", a.FechaLimite)
	}
	if a.WoNumero == nil || *a.WoNumero != "WO-77" {
		t.Fatalf("wo_numero = %v", a.WoNumero)
	}
	if rep.Acciones[1].Descripcion != "" || rep.Acciones[1].FechaLimite != nil {
		t.Fatalf("empty action not mapped verbatim: %+v", rep.Acciones[1])
	}
}

func TestDraftCreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)
	payload, _ := json.Marshal(map[string]any{"datos_generales": map[string]any{"planta": "Linea 2"}})
	draft, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{
		Identity:       testIdentity,
		DatosGenerales: map[string]any{"planta": "Linea 2"},
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if draft.Estado != "borrador" {
		t.Fatalf("estado = %q", draft.Estado)
	}
	if !strings.Contains(draft.Folio, "DRAFT") {
		t.Fatalf("folio = %q", draft.Folio)
	}
	if draft.BorradorData == nil || *draft.BorradorData != string(payload) {
		t.Fatalf("borrador_data not stored verbatim")
	}

	updated, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{
		Identity:       testIdentity,
		ID:             draft.ID,
		ClienteID:      env.ClienteID,
		DatosGenerales: map[string]any{"planta": "Linea 3"},
	})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.ID != draft.ID {
		t.Fatalf("id changed: %d -> %d", draft.ID, updated.ID)
	}
	if updated.Folio != draft.Folio {
		t.Fatalf("folio changed on update")
	}
	if updated.Planta == nil || *updated.Planta != "Linea 3" {
		t.Fatalf("planta = %v", updated.Planta)
	}
	if updated.Estado != "borrador" {
		t.Fatalf("estado = %q", updated.Estado)
	}
}

func TestDraftClienteIDFromDatosGenerales(t *testing.T) {
	env := newTestEnv(t)
	draft, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{
		Identity:       testIdentity,
		DatosGenerales: map[string]any{"cliente_id": env.ClienteID},
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if draft.ClienteID == nil || *draft.ClienteID != env.ClienteID {
		t.Fatalf("cliente_id = %v, want %d", draft.ClienteID, env.ClienteID)
	}

	// A coercible top-level id still wins over the nested one.
	draft2, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{
		Identity:       testIdentity,
		ID:             draft.ID,
		ClienteID:      env.ClienteID,
		DatosGenerales: map[string]any{"cliente_id": "999"},
	})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if draft2.ClienteID == nil || *draft2.ClienteID != env.ClienteID {
		t.Fatalf("cliente_id = %v, want %d", draft2.ClienteID, env.ClienteID)
	}
}

func TestDraftUpdateUnknownID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{
		Identity: testIdentity,
		ID:       9999,
	})
	if err == nil {
		t.Fatalf("expected not found")
	}
}

func TestListadoFallbackWithoutView(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
	}); err != nil {
		t.Fatalf("create report: %v", err)
	}
	if _, err := env.Engine.DB.ExecContext(env.Ctx, `DROP VIEW vw_reportes_tecnicos_listado`); err != nil {
		t.Fatalf("drop view: %v", err)
	}
	rows, err := env.Engine.Listado(env.Ctx)
	if err != nil {
		t.Fatalf("expected fallback to serve listing: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ClienteNombre == nil || *rows[0].ClienteNombre != "Planta Norte" {
		t.Fatalf("cliente_nombre = %v", rows[0].ClienteNombre)
	}
}

func TestListadoFallbackAfterDeniedView(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
	}); err != nil {
		t.Fatalf("create report: %v", err)
	}
	// The view can be denied while the base tables remain readable; the
	// fallback must still run.
	if _, err := env.Engine.DB.ExecContext(env.Ctx, `DROP VIEW vw_reportes_tecnicos_listado`); err != nil {
		t.Fatalf("drop view: %v", err)
	}
	if _, err := env.Engine.DB.ExecContext(env.Ctx,
		`CREATE VIEW vw_reportes_tecnicos_listado AS SELECT * FROM permission_audit`); err != nil {
		t.Fatalf("recreate view: %v", err)
	}
	rows, err := env.Engine.Listado(env.Ctx)
	if err != nil {
		t.Fatalf("expected fallback to serve listing: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestListadoJoinsNames(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
	}); err != nil {
		t.Fatalf("create report: %v", err)
	}
	rows, err := env.Engine.Listado(env.Ctx)
	if err != nil {
		t.Fatalf("listado: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.IngenieroNombre == nil || *r.IngenieroNombre != "Ing. Prueba" {
		t.Fatalf("ingeniero_nombre = %v", r.IngenieroNombre)
	}
	if r.ClienteNombre == nil || *r.ClienteNombre != "Planta Norte" {
		t.Fatalf("cliente_nombre = %v", r.ClienteNombre)
	}
}

func TestReportEventsLogged(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.CreateReport(env.Ctx, engine.ReportCreateOptions{
		Identity:  testIdentity,
		ClienteID: env.ClienteID,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if _, err := env.Engine.SaveDraft(env.Ctx, engine.DraftSaveOptions{Identity: testIdentity}); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	events, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, "")
	if err != nil {
		t.Fatalf("latest events: %v", err)
	}
	var created, saved bool
	for _, e := range events {
		if e.Type == "report.created" && e.ReporteID != nil && *e.ReporteID == rep.ID {
			created = true
		}
		if e.Type == "draft.saved" {
			saved = true
		}
	}
	if !created || !saved {
		t.Fatalf("expected report.created and draft.saved events, got %+v", events)
	}
}

func TestCatalogNestsItems(t *testing.T) {
	env := newTestEnv(t)
	sections, err := env.Engine.Catalog(env.Ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(sections) == 0 {
		t.Fatalf("expected seeded sections")
	}
	for _, s := range sections {
		for _, it := range s.Items {
			if it.SeccionID != s.ID {
				t.Fatalf("item %d nested under wrong section", it.ID)
			}
		}
	}
	// seeding twice is a no-op
	seeded, err := env.Engine.SeedCatalog(env.Ctx)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if seeded {
		t.Fatalf("expected reseed to be a no-op")
	}
}

func TestCatalogKeepsInactiveItems(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.Repo.InsertCatalogItem(env.Ctx, domain.CatalogItem{
		ID: 99, SeccionID: 5, Descripcion: "Retirado del formato", Orden: 9,
	}); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if err := env.Engine.Repo.InsertCatalogSection(env.Ctx, domain.CatalogSection{
		ID: 9, Nombre: "Sección retirada", Orden: 9,
	}); err != nil {
		t.Fatalf("insert section: %v", err)
	}
	sections, err := env.Engine.Catalog(env.Ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	var foundItem bool
	for _, s := range sections {
		if s.ID == 9 {
			t.Fatalf("inactive section listed")
		}
		for _, it := range s.Items {
			if it.ID == 99 {
				foundItem = true
			}
		}
	}
	if !foundItem {
		t.Fatalf("inactive item missing from nested catalog")
	}
}

func TestPermissionClassification(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"permission denied for view vw_reportes_tecnicos_listado", true},
		{"pq: 42501 insufficient privilege", true},
		{"user not authorized", true},
		{"no such view: vw_reportes_tecnicos_listado", false},
		{"syntax error", false},
	}
	for _, c := range cases {
		if got := repo.IsPermissionDenied(errMsg(c.msg)); got != c.want {
			t.Errorf("IsPermissionDenied(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
	if repo.IsPermissionDenied(nil) {
		t.Errorf("nil error classified as permission denied")
	}
}

type errMsg string

func (e errMsg) Error() string { return string(e) }
