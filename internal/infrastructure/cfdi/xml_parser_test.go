package cfdi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecuperaElComprobante(t *testing.T) {
	original := comprobanteParaXML(t)
	xmlBytes, err := NewXMLBuilderService().Build(original)
	require.NoError(t, err)

	c, err := NewXMLParserService().Parse(xmlBytes)
	require.NoError(t, err)

	assert.Equal(t, "A", c.Serie)
	assert.Equal(t, "1001", c.Folio)
	assert.Equal(t, original.Fecha, c.Fecha)
	assert.Equal(t, "SPT190101AB1", c.Emisor.RFC)
	assert.Equal(t, "GODE561231GR8", c.Receptor.RFC)
	assert.Equal(t, "06700", c.Receptor.DomicilioFiscalReceptor)
	assert.True(t, c.SubTotal.Equal(dec("200")))
	assert.True(t, c.Total.Equal(dec("232")))

	require.Len(t, c.Conceptos, 1)
	con := c.Conceptos[0]
	assert.Equal(t, "Tour ciudad de México", con.Descripcion)
	assert.True(t, con.Importe.Equal(dec("200")))
	require.Len(t, con.Traslados, 1)
	assert.True(t, con.Traslados[0].TasaOCuota.Equal(dec("0.16")))
	assert.True(t, con.Traslados[0].Importe.Equal(dec("32")))

	require.NotNil(t, c.Impuestos)
	assert.True(t, c.Impuestos.TotalImpuestosTrasladados.Equal(dec("32")))

	// sin complemento de timbrado no hay Timbre
	assert.Nil(t, c.Timbre)
	assert.False(t, c.Timbrado())
}

func TestParseLeeTimbreFiscalDigital(t *testing.T) {
	xmlTimbrado := `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Serie="A" Folio="1001" Fecha="2026-08-12T14:30:00" SubTotal="200.00" Moneda="MXN" Total="232.00" TipoDeComprobante="I" Exportacion="01" LugarExpedicion="06600" Sello="c2VsbG8=" NoCertificado="30001000000400002434">
  <cfdi:Emisor Rfc="SPT190101AB1" Nombre="SPIRIT TOURS" RegimenFiscal="601"/>
  <cfdi:Receptor Rfc="GODE561231GR8" Nombre="GONZALEZ DIAZ EMMA" DomicilioFiscalReceptor="06700" RegimenFiscalReceptor="605" UsoCFDI="G03"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="90121500" Cantidad="2" ClaveUnidad="E48" Descripcion="Tour" ValorUnitario="100.00" Importe="200.00" ObjetoImp="02"/>
  </cfdi:Conceptos>
  <cfdi:Complemento>
    <tfd:TimbreFiscalDigital xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital" Version="1.1" UUID="3C1A6DE5-0000-4A5B-9D2C-7E8F00112233" FechaTimbrado="2026-08-12T14:31:05" SelloCFD="c2VsbG8=" NoCertificadoSAT="30001000000400002495" SelloSAT="c2VsbG9TQVQ="/>
  </cfdi:Complemento>
</cfdi:Comprobante>`

	c, err := NewXMLParserService().Parse([]byte(xmlTimbrado))
	require.NoError(t, err)

	require.NotNil(t, c.Timbre)
	assert.True(t, c.Timbrado())
	assert.Equal(t, "3C1A6DE5-0000-4A5B-9D2C-7E8F00112233", c.Timbre.UUID)
	assert.Equal(t, "30001000000400002495", c.Timbre.NoCertificadoSAT)
	assert.Equal(t, time.Date(2026, 8, 12, 14, 31, 5, 0, time.UTC), c.Timbre.FechaTimbrado)
	assert.Equal(t, "c2VsbG8=", c.Sello)
}

func TestParseRechazaXMLAjeno(t *testing.T) {
	_, err := NewXMLParserService().Parse([]byte(`<factura Total="1.00"/>`))
	require.Error(t, err)

	_, err = NewXMLParserService().Parse([]byte(`no es xml`))
	require.Error(t, err)
}
