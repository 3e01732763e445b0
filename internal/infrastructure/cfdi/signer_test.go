package cfdi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCSD genera un certificado autofirmado con serial al estilo SAT: los
// bytes del serial son los dígitos ASCII del número de certificado.
func testCSD(t *testing.T) tls.Certificate {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	serial := new(big.Int).SetBytes([]byte("30001000000400002434"))
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "SPIRIT TOURS", SerialNumber: "SPT190101AB1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}
}

const xmlSinSello = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Serie="A" Folio="1001" Moneda="MXN" SubTotal="200.00" Total="232.00" TipoDeComprobante="I" LugarExpedicion="06600">
  <cfdi:Emisor Rfc="SPT190101AB1" Nombre="SPIRIT TOURS" RegimenFiscal="601"/>
  <cfdi:Receptor Rfc="GODE561231GR8" Nombre="GONZALEZ DIAZ EMMA" DomicilioFiscalReceptor="06700" RegimenFiscalReceptor="605" UsoCFDI="G03"/>
</cfdi:Comprobante>`

func TestSignInyectaSelloVerificable(t *testing.T) {
	cert := testCSD(t)
	signer, err := NewCSDSigner(cert)
	require.NoError(t, err)

	signed, err := signer.Sign(nil, []byte(xmlSinSello))
	require.NoError(t, err)

	assert.NotEmpty(t, signed.Sello)
	assert.Equal(t, "30001000000400002434", signed.NoCertificado)
	assert.NotEmpty(t, signed.Certificado)
	assert.Contains(t, signed.CadenaOriginal, "||4.0|")

	// el sello verifica contra la llave pública del CSD
	firma, err := base64.StdEncoding.DecodeString(signed.Sello)
	require.NoError(t, err)
	digest := sha256.Sum256([]byte(signed.CadenaOriginal))
	pub := cert.Leaf.PublicKey.(*rsa.PublicKey)
	require.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], firma))

	// los atributos quedaron en el nodo raíz
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed.XML))
	root := doc.Root()
	assert.Equal(t, signed.Sello, root.SelectAttrValue("Sello", ""))
	assert.Equal(t, signed.NoCertificado, root.SelectAttrValue("NoCertificado", ""))
	assert.Equal(t, signed.Certificado, root.SelectAttrValue("Certificado", ""))
}

func TestSignRechazaXMLVacio(t *testing.T) {
	signer, err := NewCSDSigner(testCSD(t))
	require.NoError(t, err)

	_, err = signer.Sign(nil, nil)
	assert.Error(t, err)
}

func TestNewCSDSignerRequiereLlaveRSA(t *testing.T) {
	_, err := NewCSDSigner(tls.Certificate{})
	assert.Error(t, err)
}
