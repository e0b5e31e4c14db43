package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sigrep/internal/domain"
	"sigrep/internal/events"
	"sigrep/internal/repo"
	"sigrep/internal/sanitize"
)

// DetailRow is one checklist answer as submitted by a client. ItemID arrives
// untyped; rows whose id does not coerce to an integer are skipped.
type DetailRow struct {
	ItemID      any      `json:"item_id"`
	Estado      string   `json:"estado,omitempty"`
	Comentarios string   `json:"comentarios,omitempty"`
	FotoURL     string   `json:"fotoUrl,omitempty"`
	Evidencias  []string `json:"evidencias,omitempty"`
}

// ActionRow is one follow-up action as submitted by a client.
type ActionRow struct {
	Descripcion string `json:"descripcion"`
	Tipo        string `json:"tipo,omitempty"`
	Responsable string `json:"responsable,omitempty"`
	Fecha       string `json:"fecha,omitempty"`
	Criticidad  string `json:"criticidad,omitempty"`
	WoNumero    string `json:"wo_numero,omitempty"`
	Wo          string `json:"wo,omitempty"`
}

// ReportCreateOptions carries a full submission.
type ReportCreateOptions struct {
	Identity       Identity
	ClienteID      any
	CotizacionID   any
	DatosGenerales map[string]any
	Cierre         map[string]any
	Detalles       []DetailRow
	Acciones       []ActionRow
}

// CreateReport persists a finished report with its checklist and actions in a
// single transaction. The closing block overrides the matching header fields
// before normalization.
func (e Engine) CreateReport(ctx context.Context, opts ReportCreateOptions) (domain.ReportFull, error) {
	if opts.Identity.ID == "" {
		return domain.ReportFull{}, errors.New("identity is required")
	}
	clienteID := sanitize.IntOrNull(opts.ClienteID)
	if clienteID == nil {
		return domain.ReportFull{}, errors.New("cliente_id is required")
	}

	dg := map[string]any{}
	for k, v := range opts.DatosGenerales {
		dg[k] = v
	}
	dg["cliente_id"] = *clienteID
	if cot := sanitize.IntOrNull(opts.CotizacionID); cot != nil {
		dg["cotizacion_id"] = *cot
	} else {
		delete(dg, "cotizacion_id")
	}
	for _, k := range []string{"comentarios_finales", "eficiencias", "perdidas"} {
		// A null in the closing block does not erase the header value.
		if v, ok := opts.Cierre[k]; ok && v != nil {
			dg[k] = v
		}
	}

	now := e.now()
	ts := now.UTC().Format(time.RFC3339)
	rep := domain.Report{
		Folio:       fmt.Sprintf("%s-%d", e.folioPrefix(), now.UnixMilli()),
		UsuarioID:   opts.Identity.ID,
		GeneralData: domain.GeneralDataFromMap(sanitize.GeneralData(dg)),
		Estado:      "finalizado",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	details := make([]domain.ReportDetail, 0, len(opts.Detalles))
	for _, d := range opts.Detalles {
		itemID := sanitize.IntOrNull(d.ItemID)
		if itemID == nil {
			continue
		}
		row := domain.ReportDetail{
			ItemID:           *itemID,
			Estado:           d.Estado,
			Comentarios:      strPtr(d.Comentarios),
			EvidenciaFotoURL: strPtr(d.FotoURL),
		}
		if row.EvidenciaFotoURL == nil && len(d.Evidencias) > 0 {
			row.EvidenciaFotoURL = strPtr(d.Evidencias[0])
		}
		details = append(details, row)
	}

	// Action rows are mapped as submitted, no coercion and no filtering.
	actions := make([]domain.ReportAction, 0, len(opts.Acciones))
	for _, a := range opts.Acciones {
		wo := a.WoNumero
		if wo == "" {
			wo = a.Wo
		}
		actions = append(actions, domain.ReportAction{
			Descripcion: a.Descripcion,
			TipoAccion:  strPtr(a.Tipo),
			Responsable: strPtr(a.Responsable),
			FechaLimite: strPtr(a.Fecha),
			Criticidad:  strPtr(a.Criticidad),
			WoNumero:    strPtr(wo),
		})
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.ReportFull{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.EnsureUserTx(ctx, tx, domain.User{
		ID:        opts.Identity.ID,
		Nombre:    identityName(opts.Identity),
		CreatedAt: ts,
	}); err != nil {
		return domain.ReportFull{}, fmt.Errorf("ensure user: %w", err)
	}
	id, err := e.Repo.InsertReportTx(ctx, tx, rep)
	if err != nil {
		return domain.ReportFull{}, fmt.Errorf("insert report: %w", err)
	}
	if err := e.Repo.InsertDetailsTx(ctx, tx, id, details); err != nil {
		return domain.ReportFull{}, fmt.Errorf("insert detalles: %w", err)
	}
	if err := e.Repo.InsertActionsTx(ctx, tx, id, actions); err != nil {
		return domain.ReportFull{}, fmt.Errorf("insert acciones: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "report.created", id, opts.Identity.ID, events.EventPayload{
		"folio":    rep.Folio,
		"detalles": len(details),
		"acciones": len(actions),
	}); err != nil {
		return domain.ReportFull{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ReportFull{}, err
	}
	return e.GetReport(ctx, id)
}

// DraftSaveOptions carries a draft autosave. ID zero creates a new draft;
// otherwise the existing row is overwritten, last write wins.
type DraftSaveOptions struct {
	Identity       Identity
	ID             int64
	ClienteID      any
	CotizacionID   any
	DatosGenerales map[string]any
	Payload        json.RawMessage
}

// SaveDraft upserts a draft. The raw payload is stored verbatim in
// borrador_data so an interrupted session can be restored byte for byte.
func (e Engine) SaveDraft(ctx context.Context, opts DraftSaveOptions) (domain.Report, error) {
	if opts.Identity.ID == "" {
		return domain.Report{}, errors.New("identity is required")
	}

	dg := map[string]any{}
	for k, v := range opts.DatosGenerales {
		dg[k] = v
	}
	// Autosave clients send the ids either at the top level or inside
	// datos_generales; the top-level value wins when both coerce.
	cli := sanitize.IntOrNull(opts.ClienteID)
	if cli == nil {
		cli = sanitize.IntOrNull(dg["cliente_id"])
	}
	if cli != nil {
		dg["cliente_id"] = *cli
	} else {
		delete(dg, "cliente_id")
	}
	cot := sanitize.IntOrNull(opts.CotizacionID)
	if cot == nil {
		cot = sanitize.IntOrNull(dg["cotizacion_id"])
	}
	if cot != nil {
		dg["cotizacion_id"] = *cot
	} else {
		delete(dg, "cotizacion_id")
	}

	now := e.now()
	ts := now.UTC().Format(time.RFC3339)
	rep := domain.Report{
		UsuarioID:   opts.Identity.ID,
		GeneralData: domain.GeneralDataFromMap(sanitize.GeneralData(dg)),
		Estado:      "borrador",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if len(opts.Payload) > 0 {
		raw := string(opts.Payload)
		rep.BorradorData = &raw
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Report{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.EnsureUserTx(ctx, tx, domain.User{
		ID:        opts.Identity.ID,
		Nombre:    identityName(opts.Identity),
		CreatedAt: ts,
	}); err != nil {
		return domain.Report{}, fmt.Errorf("ensure user: %w", err)
	}

	id := opts.ID
	if id == 0 {
		rep.Folio = fmt.Sprintf("%s-DRAFT-%d", e.folioPrefix(), now.UnixMilli())
		id, err = e.Repo.InsertReportTx(ctx, tx, rep)
		if err != nil {
			return domain.Report{}, fmt.Errorf("insert draft: %w", err)
		}
	} else {
		if err := e.Repo.UpdateDraftTx(ctx, tx, id, rep); err != nil {
			return domain.Report{}, err
		}
	}
	if err := e.Events.Append(ctx, tx, "draft.saved", id, opts.Identity.ID, nil); err != nil {
		return domain.Report{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Report{}, err
	}
	return e.Repo.GetReport(ctx, id)
}

// GetReport returns a report with its checklist and actions.
func (e Engine) GetReport(ctx context.Context, id int64) (domain.ReportFull, error) {
	rep, err := e.Repo.GetReport(ctx, id)
	if err != nil {
		return domain.ReportFull{}, err
	}
	details, err := e.Repo.ListReportDetails(ctx, id)
	if err != nil {
		return domain.ReportFull{}, err
	}
	actions, err := e.Repo.ListReportActions(ctx, id)
	if err != nil {
		return domain.ReportFull{}, err
	}
	return domain.ReportFull{Report: rep, Detalles: details, Acciones: actions}, nil
}

// Listado serves the dashboard table. The reporting view is the primary
// source; any view failure retries against the base tables, and only a
// fallback failure is classified as access denial or a generic error.
func (e Engine) Listado(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := e.Repo.ListadoView(ctx)
	if err == nil {
		return rows, nil
	}
	rows, ferr := e.Repo.ListadoFallback(ctx)
	if ferr != nil {
		if repo.IsPermissionDenied(ferr) {
			return nil, fmt.Errorf("listado fallback: %w", ferr)
		}
		return nil, fmt.Errorf("listado fallback after %v: %w", err, ferr)
	}
	return rows, nil
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func identityName(id Identity) string {
	if id.Nombre != "" {
		return id.Nombre
	}
	return id.ID
}
