package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"sigrep/internal/domain"
	"sigrep/internal/engine"
)

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCatalog(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-report-catalog",
		Method:      http.MethodGet,
		Path:        "/reportes/catalogos",
		Summary:     "Checklist catalog",
		Description: "Active checklist sections with their items nested.",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Secciones []domain.CatalogSection `json:"secciones"`
		} `json:"body"`
	}, error) {
		sections, err := e.Catalog(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if sections == nil {
			sections = []domain.CatalogSection{}
		}
		resp := &struct {
			Body struct {
				Secciones []domain.CatalogSection `json:"secciones"`
			} `json:"body"`
		}{}
		resp.Body.Secciones = sections
		return resp, nil
	})
}

// createReportBody is the submission payload. Identifier fields are accepted
// as any JSON scalar and coerced.
type createReportBody struct {
	ClienteID      any                `json:"cliente_id,omitempty"`
	CotizacionID   any                `json:"cotizacion_id,omitempty"`
	DatosGenerales map[string]any     `json:"datos_generales,omitempty"`
	Cierre         map[string]any     `json:"cierre,omitempty"`
	Detalles       []engine.DetailRow `json:"detalles,omitempty"`
	Acciones       []engine.ActionRow `json:"acciones,omitempty"`
}

type draftBody struct {
	ID             int64          `json:"id,omitempty"`
	ClienteID      any            `json:"cliente_id,omitempty"`
	CotizacionID   any            `json:"cotizacion_id,omitempty"`
	DatosGenerales map[string]any `json:"datos_generales,omitempty"`
}

func registerReports(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-report",
		Method:        http.MethodPost,
		Path:          "/reportes",
		Summary:       "Submit report",
		Description:   "Persists a finished report with its checklist and actions atomically.",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body createReportBody
	}) (*struct {
		Body domain.ReportFull `json:"body"`
	}, error) {
		identity, authErr := identityFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rep, err := e.CreateReport(ctx, engine.ReportCreateOptions{
			Identity:       identity,
			ClienteID:      input.Body.ClienteID,
			CotizacionID:   input.Body.CotizacionID,
			DatosGenerales: input.Body.DatosGenerales,
			Cierre:         input.Body.Cierre,
			Detalles:       input.Body.Detalles,
			Acciones:       input.Body.Acciones,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ReportFull `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-report-draft",
		Method:      http.MethodPost,
		Path:        "/reportes/draft",
		Summary:     "Autosave draft",
		Description: "Creates or overwrites a draft; the raw payload is kept verbatim for session restore.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		RawBody []byte
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		identity, authErr := identityFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		var body draftBody
		if err := json.Unmarshal(input.RawBody, &body); err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid json body", nil)
		}
		rep, err := e.SaveDraft(ctx, engine.DraftSaveOptions{
			Identity:       identity,
			ID:             body.ID,
			ClienteID:      body.ClienteID,
			CotizacionID:   body.CotizacionID,
			DatosGenerales: body.DatosGenerales,
			Payload:        json.RawMessage(input.RawBody),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-listado",
		Method:      http.MethodGet,
		Path:        "/reportes/listado",
		Summary:     "Dashboard listing",
		Description: "Flattened report rows from the reporting view, falling back to base tables.",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Reportes []domain.ReportSummary `json:"reportes"`
		} `json:"body"`
	}, error) {
		if _, authErr := identityFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		rows, err := e.Listado(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if rows == nil {
			rows = []domain.ReportSummary{}
		}
		resp := &struct {
			Body struct {
				Reportes []domain.ReportSummary `json:"reportes"`
			} `json:"body"`
		}{}
		resp.Body.Reportes = rows
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reports",
		Method:      http.MethodGet,
		Path:        "/reportes",
		Summary:     "List reports",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Reportes []domain.Report `json:"reportes"`
		} `json:"body"`
	}, error) {
		if _, authErr := identityFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		reports, err := e.Repo.ListReports(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if reports == nil {
			reports = []domain.Report{}
		}
		resp := &struct {
			Body struct {
				Reportes []domain.Report `json:"reportes"`
			} `json:"body"`
		}{}
		resp.Body.Reportes = reports
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/reportes/{id}",
		Summary:     "Get report",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body domain.ReportFull `json:"body"`
	}, error) {
		if _, authErr := identityFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		rep, err := e.GetReport(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ReportFull `json:"body"`
		}{Body: rep}, nil
	})
}

func registerQuotations(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-quotations",
		Method:      http.MethodGet,
		Path:        "/cotizaciones",
		Summary:     "List quotations",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Cotizaciones []domain.Quotation `json:"cotizaciones"`
		} `json:"body"`
	}, error) {
		if _, authErr := identityFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		rows, err := e.Repo.ListQuotations(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if rows == nil {
			rows = []domain.Quotation{}
		}
		resp := &struct {
			Body struct {
				Cotizaciones []domain.Quotation `json:"cotizaciones"`
			} `json:"body"`
		}{}
		resp.Body.Cotizaciones = rows
		return resp, nil
	})
}

func registerClients(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-clients",
		Method:      http.MethodGet,
		Path:        "/clientes",
		Summary:     "List clients",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Clientes []domain.Client `json:"clientes"`
		} `json:"body"`
	}, error) {
		if _, authErr := identityFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		rows, err := e.Repo.ListClients(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if rows == nil {
			rows = []domain.Client{}
		}
		resp := &struct {
			Body struct {
				Clientes []domain.Client `json:"clientes"`
			} `json:"body"`
		}{}
		resp.Body.Clientes = rows
		return resp, nil
	})
}
