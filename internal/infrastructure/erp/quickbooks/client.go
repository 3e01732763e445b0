// Package quickbooks implementa el adaptador contable para QuickBooks Online
// (API v3 de Intuit) con autenticación OAuth2 por refresh token.
package quickbooks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spirittours/erp-hub/internal/domain"
)

const (
	baseURLSandbox = "https://sandbox-quickbooks.api.intuit.com"
	baseURLProd    = "https://quickbooks.api.intuit.com"
	tokenURL       = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	// Margen antes de la expiración real para renovar el access token.
	tokenSlack = 2 * time.Minute
)

// client encapsula el transporte HTTP hacia Intuit: renovación de tokens,
// serialización JSON y traducción de fallas a errores de dominio.
type client struct {
	clientID     string
	clientSecret string
	refreshToken string
	realmID      string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func newClient(clientID, clientSecret, refreshToken, realmID, baseURL string) *client {
	return &client{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		realmID:      realmID,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// refreshAccessToken renueva el access token con el grant refresh_token.
// Intuit rota el refresh token en cada renovación; conservamos el nuevo.
func (c *client) refreshAccessToken(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("quickbooks: crear request de token: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.AuthenticationError{Provider: "quickbooks", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("quickbooks: leer respuesta de token: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.AuthenticationError{
			Provider: "quickbooks",
			Cause:    fmt.Errorf("token HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("quickbooks: parsear respuesta de token: %w", err)
	}

	c.mu.Lock()
	c.accessToken = tok.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if tok.RefreshToken != "" {
		c.refreshToken = tok.RefreshToken
	}
	c.mu.Unlock()
	return nil
}

func (c *client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	valid := c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-tokenSlack))
	c.mu.Unlock()
	if valid {
		return nil
	}
	return c.refreshAccessToken(ctx)
}

func (c *client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// post envía una entidad al endpoint relativo (ej. "customer") y decodifica
// la respuesta en out.
func (c *client) post(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("quickbooks: serializar %s: %w", path, err)
	}
	endpoint := fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, c.realmID, path)
	return c.do(ctx, method, http.MethodPost, endpoint, bytes.NewReader(body), out)
}

// get consulta un endpoint relativo sin payload.
func (c *client) get(ctx context.Context, method, path string, out any) error {
	endpoint := fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, c.realmID, path)
	return c.do(ctx, method, http.MethodGet, endpoint, nil, out)
}

// query ejecuta una consulta del lenguaje de Intuit (select * from ...).
func (c *client) query(ctx context.Context, method, q string, out *qbQueryResponse) error {
	path := "query?query=" + url.QueryEscape(q)
	return c.get(ctx, method, path, out)
}

func (c *client) do(ctx context.Context, method, httpMethod, endpoint string, body io.Reader, out any) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return fmt.Errorf("quickbooks: crear request %s: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &domain.AdapterOperationError{Provider: "quickbooks", Method: method, Cause: ctx.Err()}
		}
		return &domain.AdapterOperationError{Provider: "quickbooks", Method: method, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // reportes grandes
	if err != nil {
		return &domain.AdapterOperationError{Provider: "quickbooks", Method: method, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Token inválido o revocado: el orquestador reintenta y ensureToken
		// renovará en el siguiente intento.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return &domain.AuthenticationError{Provider: "quickbooks", Cause: fmt.Errorf("HTTP 401 en %s", method)}
	case resp.StatusCode >= 500:
		return &domain.AdapterOperationError{
			Provider: "quickbooks",
			Method:   method,
			Cause:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	case resp.StatusCode >= 400:
		// Error de negocio (payload inválido, SyncToken viejo): terminal,
		// no tiene caso reintentar con el mismo payload.
		return fmt.Errorf("quickbooks %s: %s", method, faultMessage(raw, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.AdapterOperationError{
			Provider: "quickbooks",
			Method:   method,
			Cause:    fmt.Errorf("respuesta no parseable: %w", err),
		}
	}
	return nil
}

// faultMessage extrae el detalle del Fault de Intuit para errores 4xx.
func faultMessage(raw []byte, status int) string {
	var wrapper struct {
		Fault *qbFault `json:"Fault"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Fault != nil && len(wrapper.Fault.Error) > 0 {
		e := wrapper.Fault.Error[0]
		if e.Detail != "" {
			return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
		}
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(raw)))
}
