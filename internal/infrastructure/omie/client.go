// Package omie cliente de la API REST de Omie (cuentas a pagar).
package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/comisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

var _ reconciliation.ERPClient = (*Client)(nil)

const (
	payablesPath     = "/financas/contapagar/"
	callGetPayable   = "ConsultarContaPagar"
	faultNotFound    = "SOAP-ENV:Client-103"
	maxResponseBytes = 256 * 1024
)

// Client adaptador de ERPClient sobre net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente. baseURL suele ser https://app.omie.com.br/api/v1.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type request struct {
	Call      string        `json:"call"`
	AppKey    string        `json:"app_key"`
	AppSecret string        `json:"app_secret"`
	Param     []interface{} `json:"param"`
}

type payableKey struct {
	Code json.Number `json:"codigo_lancamento_omie"`
}

type payableBody struct {
	Code        json.Number `json:"codigo_lancamento_omie"`
	TitleStatus string      `json:"status_titulo"`
}

type fault struct {
	Code    string `json:"faultcode"`
	Message string `json:"faultstring"`
}

// GetPayable consulta una cuenta a pagar por codigo_lancamento_omie.
func (c *Client) GetPayable(ctx context.Context, creds entity.ERPCredentials, code string) (*reconciliation.ERPPayable, error) {
	payload := request{
		Call:      callGetPayable,
		AppKey:    creds.AppKey,
		AppSecret: creds.AppSecret,
		Param:     []interface{}{payableKey{Code: json.Number(code)}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("omie: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+payablesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("omie: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("omie: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("omie: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("omie: leer respuesta: %w", err)
	}

	var f fault
	if jsonErr := json.Unmarshal(raw, &f); jsonErr == nil && (f.Code != "" || f.Message != "") {
		if notFound(f) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPayableNotFoundUpstream, f.Message)
		}
		return nil, fmt.Errorf("omie: %s: %s", f.Code, f.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omie: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	// solo el fault de Omie indica que la cuenta no existe; cualquier otra forma es un error del ERP
	var p payableBody
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: omie: respuesta inesperada: %v", domain.ErrExternalService, err)
	}
	if p.Code == "" {
		return nil, fmt.Errorf("%w: omie: resposta sem codigo_lancamento_omie: %.200s", domain.ErrExternalService, raw)
	}
	return &reconciliation.ERPPayable{
		Code:        p.Code.String(),
		TitleStatus: p.TitleStatus,
		Raw:         json.RawMessage(raw),
	}, nil
}

func notFound(f fault) bool {
	if f.Code == faultNotFound {
		return true
	}
	msg := strings.ToLower(f.Message)
	return strings.Contains(msg, "não cadastrad") || strings.Contains(msg, "não encontrad")
}
