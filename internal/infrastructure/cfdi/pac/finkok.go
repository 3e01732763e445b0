// Package pac contiene los clientes hacia los proveedores autorizados de
// certificación: Finkok (SOAP) y SW Sapien (REST). Ambos implementan el
// puerto PACClient de la capa de aplicación.
package pac

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/internal/domain"
)

const (
	finkokStampURLDemo  = "https://demo-facturacion.finkok.com/servicios/soap/stamp"
	finkokStampURLProd  = "https://facturacion.finkok.com/servicios/soap/stamp"
	finkokCancelURLDemo = "https://demo-facturacion.finkok.com/servicios/soap/cancel"
	finkokCancelURLProd = "https://facturacion.finkok.com/servicios/soap/cancel"

	soapEnvNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	finkokAppsNS = "apps.services.soap.core.views"

	fechaTimbradoFormat = "2006-01-02T15:04:05"
)

var _ appcfdi.PACClient = (*FinkokClient)(nil)

// FinkokClient cliente SOAP del PAC Finkok. testMode selecciona los endpoints
// de demo; las credenciales son las de la cuenta Finkok, no el CSD.
type FinkokClient struct {
	username   string
	password   string
	stampURL   string
	cancelURL  string
	httpClient *http.Client
}

// NewFinkokClient construye el cliente con timeout generoso: el timbrado
// puede tardar varios segundos en horas pico.
func NewFinkokClient(username, password string, testMode bool) *FinkokClient {
	stampURL, cancelURL := finkokStampURLProd, finkokCancelURLProd
	if testMode {
		stampURL, cancelURL = finkokStampURLDemo, finkokCancelURLDemo
	}
	return &FinkokClient{
		username:   username,
		password:   password,
		stampURL:   stampURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ── Estructuras SOAP ─────────────────────────────────────────────────────────

type finkokEnvelope struct {
	XMLName xml.Name   `xml:"s:Envelope"`
	XmlnsS  string     `xml:"xmlns:s,attr"`
	Body    finkokBody `xml:"s:Body"`
}

type finkokBody struct {
	Content any
}

func (b finkokBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "s:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type finkokStampBody struct {
	XMLName  xml.Name `xml:"stamp"`
	Xmlns    string   `xml:"xmlns,attr"`
	XML      string   `xml:"xml"` // CFDI sellado en Base64
	Username string   `xml:"username"`
	Password string   `xml:"password"`
}

type finkokCancelBody struct {
	XMLName          xml.Name `xml:"cancel_signature"`
	Xmlns            string   `xml:"xmlns,attr"`
	UUID             string   `xml:"uuid"`
	Username         string   `xml:"username"`
	Password         string   `xml:"password"`
	TaxpayerID       string   `xml:"taxpayer_id"` // RFC del emisor
	Motivo           string   `xml:"motivo"`
	FolioSustitucion string   `xml:"folioSustitucion,omitempty"`
}

type finkokResponseEnvelope struct {
	Body finkokResponseBody `xml:"Body"`
}

type finkokResponseBody struct {
	StampResponse  *finkokStampResponse  `xml:"stampResponse"`
	CancelResponse *finkokCancelResponse `xml:"cancel_signatureResponse"`
	Fault          *finkokFault          `xml:"Fault"`
}

type finkokFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type finkokStampResponse struct {
	Result finkokStampResult `xml:"stampResult"`
}

type finkokStampResult struct {
	XML              string            `xml:"xml"`
	UUID             string            `xml:"UUID"`
	Fecha            string            `xml:"Fecha"`
	CodEstatus       string            `xml:"CodEstatus"`
	SatSeal          string            `xml:"SatSeal"`
	NoCertificadoSAT string            `xml:"NoCertificadoSAT"`
	Incidencias      []finkokIncidence `xml:"Incidencias>Incidencia"`
}

type finkokIncidence struct {
	CodigoError       string `xml:"CodigoError"`
	MensajeIncidencia string `xml:"MensajeIncidencia"`
}

type finkokCancelResponse struct {
	Result finkokCancelResult `xml:"cancel_signatureResult"`
}

type finkokCancelResult struct {
	EstatusUUID   string `xml:"Folios>Folio>EstatusUUID"`
	EstatusCancel string `xml:"Folios>Folio>EstatusCancelacion"`
	Acuse         string `xml:"Acuse"`
	CodEstatus    string `xml:"CodEstatus"`
}

// ── Operaciones ──────────────────────────────────────────────────────────────

// Stamp envía el XML sellado al WS de timbrado y regresa el timbre.
func (c *FinkokClient) Stamp(ctx context.Context, signedXML []byte) (*appcfdi.StampResult, error) {
	body := &finkokStampBody{
		Xmlns:    finkokAppsNS,
		XML:      base64.StdEncoding.EncodeToString(signedXML),
		Username: c.username,
		Password: c.password,
	}

	var resp finkokResponseEnvelope
	if err := c.call(ctx, c.stampURL, "stamp", body, &resp); err != nil {
		return nil, err
	}
	if resp.Body.Fault != nil {
		return nil, &domain.StampingError{
			Provider: "finkok",
			Code:     resp.Body.Fault.FaultCode,
			Message:  resp.Body.Fault.FaultString,
		}
	}
	if resp.Body.StampResponse == nil {
		return nil, &domain.StampingError{Provider: "finkok", Message: "respuesta SOAP vacía"}
	}

	result := resp.Body.StampResponse.Result
	if result.UUID == "" {
		msg := result.CodEstatus
		code := ""
		if len(result.Incidencias) > 0 {
			code = result.Incidencias[0].CodigoError
			msg = result.Incidencias[0].MensajeIncidencia
		}
		return nil, &domain.StampingError{Provider: "finkok", Code: code, Message: msg}
	}

	fecha, err := time.Parse(fechaTimbradoFormat, result.Fecha)
	if err != nil {
		fecha = time.Now()
	}
	stampedXML, err := base64.StdEncoding.DecodeString(result.XML)
	if err != nil {
		// Finkok regresa el XML plano en algunos ambientes.
		stampedXML = []byte(result.XML)
	}
	return &appcfdi.StampResult{
		UUID:             result.UUID,
		FechaTimbrado:    fecha,
		SelloSAT:         result.SatSeal,
		NoCertificadoSAT: result.NoCertificadoSAT,
		XML:              stampedXML,
	}, nil
}

// Cancel solicita la cancelación del UUID ante el SAT vía Finkok.
func (c *FinkokClient) Cancel(ctx context.Context, req appcfdi.CancelRequest) (*appcfdi.CancelResult, error) {
	body := &finkokCancelBody{
		Xmlns:            finkokAppsNS,
		UUID:             req.UUID,
		Username:         c.username,
		Password:         c.password,
		TaxpayerID:       req.EmisorRFC,
		Motivo:           req.Motivo,
		FolioSustitucion: req.FolioSustitucion,
	}

	var resp finkokResponseEnvelope
	if err := c.call(ctx, c.cancelURL, "cancel_signature", body, &resp); err != nil {
		return nil, err
	}
	if resp.Body.Fault != nil {
		return nil, &domain.CancellationError{
			Provider: "finkok",
			UUID:     req.UUID,
			Message:  fmt.Sprintf("[%s] %s", resp.Body.Fault.FaultCode, resp.Body.Fault.FaultString),
		}
	}
	if resp.Body.CancelResponse == nil {
		return nil, &domain.CancellationError{Provider: "finkok", UUID: req.UUID, Message: "respuesta SOAP vacía"}
	}

	result := resp.Body.CancelResponse.Result
	status := finkokCancelStatus(result.EstatusUUID)
	if status == "rechazado" {
		return nil, &domain.CancellationError{
			Provider: "finkok",
			UUID:     req.UUID,
			Message:  result.EstatusUUID + " " + result.CodEstatus,
		}
	}
	return &appcfdi.CancelResult{
		UUID:       req.UUID,
		Status:     status,
		StatusCode: result.EstatusUUID,
		Acuse:      []byte(result.Acuse),
		CanceledAt: time.Now(),
	}, nil
}

// finkokCancelStatus traduce los códigos de estatus de cancelación del SAT:
// 201 cancelado, 202 previamente cancelado, resto pendiente o rechazo.
func finkokCancelStatus(code string) string {
	switch code {
	case "201", "202":
		return "cancelado"
	case "203", "205":
		return "rechazado"
	default:
		return "en_proceso"
	}
}

func (c *FinkokClient) call(ctx context.Context, url, action string, body, out any) error {
	envelope := finkokEnvelope{
		XmlnsS: soapEnvNS,
		Body:   finkokBody{Content: body},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("soap finkok: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("soap finkok: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("soap finkok: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("soap finkok: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return fmt.Errorf("soap finkok: leer respuesta: %w", err)
	}
	if err := xml.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("soap finkok: parsear respuesta: %s", strings.TrimSpace(string(rawBody)))
	}
	return nil
}
