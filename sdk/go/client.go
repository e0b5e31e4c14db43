package sigrepsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal reports HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Report is the API report model (partial).
type Report struct {
	ID           int64  `json:"id"`
	Folio        string `json:"folio"`
	Estado       string `json:"estado"`
	UsuarioID    string `json:"usuario_id"`
	BorradorData string `json:"borrador_data,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ReportSummary is a flattened listing row.
type ReportSummary struct {
	ID              int64  `json:"id"`
	Folio           string `json:"folio"`
	Estado          string `json:"estado"`
	Planta          string `json:"planta,omitempty"`
	ClienteNombre   string `json:"cliente_nombre,omitempty"`
	ClienteEmpresa  string `json:"cliente_empresa,omitempty"`
	IngenieroNombre string `json:"ingeniero_nombre,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// DetailRow is one checklist answer in a submission.
type DetailRow struct {
	ItemID      any      `json:"item_id"`
	Estado      string   `json:"estado,omitempty"`
	Comentarios string   `json:"comentarios,omitempty"`
	FotoURL     string   `json:"fotoUrl,omitempty"`
	Evidencias  []string `json:"evidencias,omitempty"`
}

// ActionRow is one follow-up action in a submission.
type ActionRow struct {
	Descripcion string `json:"descripcion"`
	Tipo        string `json:"tipo,omitempty"`
	Responsable string `json:"responsable,omitempty"`
	Fecha       string `json:"fecha,omitempty"`
	Criticidad  string `json:"criticidad,omitempty"`
	WoNumero    string `json:"wo_numero,omitempty"`
}

// CreateReportRequest is a full submission payload.
type CreateReportRequest struct {
	ClienteID      any            `json:"cliente_id,omitempty"`
	CotizacionID   any            `json:"cotizacion_id,omitempty"`
	DatosGenerales map[string]any `json:"datos_generales,omitempty"`
	Cierre         map[string]any `json:"cierre,omitempty"`
	Detalles       []DetailRow    `json:"detalles,omitempty"`
	Acciones       []ActionRow    `json:"acciones,omitempty"`
}

// DraftRequest is an autosave payload. ID zero creates a new draft.
type DraftRequest struct {
	ID             int64          `json:"id,omitempty"`
	ClienteID      any            `json:"cliente_id,omitempty"`
	CotizacionID   any            `json:"cotizacion_id,omitempty"`
	DatosGenerales map[string]any `json:"datos_generales,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateReport submits a finished report.
func (c *Client) CreateReport(ctx context.Context, req CreateReportRequest) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, "v0/reportes", req, &resp)
	return resp, err
}

// SaveDraft creates or overwrites a draft.
func (c *Client) SaveDraft(ctx context.Context, req DraftRequest) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, "v0/reportes/draft", req, &resp)
	return resp, err
}

// Listado returns the dashboard listing rows.
func (c *Client) Listado(ctx context.Context) ([]ReportSummary, error) {
	var resp struct {
		Reportes []ReportSummary `json:"reportes"`
	}
	err := c.do(ctx, http.MethodGet, "v0/reportes/listado", nil, &resp)
	return resp.Reportes, err
}

// GetReport fetches a report by id.
func (c *Client) GetReport(ctx context.Context, id int64) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("v0/reportes/%d", id), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
