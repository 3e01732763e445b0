package pac

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/internal/domain"
)

const (
	swBaseURLDemo = "https://services.test.sw.com.mx"
	swBaseURLProd = "https://services.sw.com.mx"
)

var _ appcfdi.PACClient = (*SWSapienClient)(nil)

// SWSapienClient cliente REST del PAC SW Sapien. Autentica con token Bearer
// de larga vida emitido desde el portal.
type SWSapienClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewSWSapienClient(token string, testMode bool) *SWSapienClient {
	baseURL := swBaseURLProd
	if testMode {
		baseURL = swBaseURLDemo
	}
	return &SWSapienClient{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type swStampResponse struct {
	Status string `json:"status"`
	Data   struct {
		CFDI              string `json:"cfdi"`
		UUID              string `json:"uuid"`
		FechaTimbrado     string `json:"fechaTimbrado"`
		SelloSAT          string `json:"selloSAT"`
		NoCertificadoSAT  string `json:"noCertificadoSAT"`
		CadenaOriginalSAT string `json:"cadenaOriginalSAT"`
	} `json:"data"`
	Message       string `json:"message"`
	MessageDetail string `json:"messageDetail"`
}

type swCancelRequest struct {
	UUID             string `json:"uuid"`
	Motivo           string `json:"motivo"`
	FolioSustitucion string `json:"folioSustitucion,omitempty"`
	RFC              string `json:"rfc"`
}

type swCancelResponse struct {
	Status string `json:"status"`
	Data   struct {
		Acuse string            `json:"acuse"`
		UUIDs map[string]string `json:"uuid"`
	} `json:"data"`
	Message       string `json:"message"`
	MessageDetail string `json:"messageDetail"`
}

// Stamp timbra vía el endpoint v4 (regresa el XML completo con timbre).
func (c *SWSapienClient) Stamp(ctx context.Context, signedXML []byte) (*appcfdi.StampResult, error) {
	url := c.baseURL + "/cfdi33/stamp/v4/b64"
	payload, err := json.Marshal(map[string]string{
		"xml": base64.StdEncoding.EncodeToString(signedXML),
	})
	if err != nil {
		return nil, fmt.Errorf("sw sapien: serializar petición: %w", err)
	}

	var resp swStampResponse
	if err := c.call(ctx, url, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data.UUID == "" {
		return nil, &domain.StampingError{
			Provider: "swsapien",
			Code:     resp.Message,
			Message:  resp.MessageDetail,
		}
	}

	fecha, err := time.Parse(fechaTimbradoFormat, resp.Data.FechaTimbrado)
	if err != nil {
		fecha = time.Now()
	}
	stampedXML, err := base64.StdEncoding.DecodeString(resp.Data.CFDI)
	if err != nil {
		stampedXML = []byte(resp.Data.CFDI)
	}
	return &appcfdi.StampResult{
		UUID:             resp.Data.UUID,
		FechaTimbrado:    fecha,
		SelloSAT:         resp.Data.SelloSAT,
		NoCertificadoSAT: resp.Data.NoCertificadoSAT,
		CadenaOriginal:   resp.Data.CadenaOriginalSAT,
		XML:              stampedXML,
	}, nil
}

// Cancel cancela con los CSD previamente cargados en la cuenta SW.
func (c *SWSapienClient) Cancel(ctx context.Context, req appcfdi.CancelRequest) (*appcfdi.CancelResult, error) {
	url := c.baseURL + "/cfdi33/cancel/csd"
	payload, err := json.Marshal(swCancelRequest{
		UUID:             req.UUID,
		Motivo:           req.Motivo,
		FolioSustitucion: req.FolioSustitucion,
		RFC:              req.EmisorRFC,
	})
	if err != nil {
		return nil, fmt.Errorf("sw sapien: serializar petición: %w", err)
	}

	var resp swCancelResponse
	if err := c.call(ctx, url, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, &domain.CancellationError{
			Provider: "swsapien",
			UUID:     req.UUID,
			Message:  fmt.Sprintf("[%s] %s", resp.Message, resp.MessageDetail),
		}
	}

	statusCode := resp.Data.UUIDs[req.UUID]
	acuse, err := base64.StdEncoding.DecodeString(resp.Data.Acuse)
	if err != nil {
		acuse = []byte(resp.Data.Acuse)
	}
	return &appcfdi.CancelResult{
		UUID:       req.UUID,
		Status:     finkokCancelStatus(statusCode),
		StatusCode: statusCode,
		Acuse:      acuse,
		CanceledAt: time.Now(),
	}, nil
}

func (c *SWSapienClient) call(ctx context.Context, url string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sw sapien: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("sw sapien: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("sw sapien: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return fmt.Errorf("sw sapien: leer respuesta: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.AuthenticationError{Provider: "swsapien", Cause: fmt.Errorf("token rechazado")}
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("sw sapien: parsear respuesta (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}
