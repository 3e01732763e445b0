package cfdi

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
)

var _ appcfdi.Signer = (*CSDSigner)(nil)

// CSDSigner sella el comprobante con el Certificado de Sello Digital del
// emisor: cadena original → RSA-SHA256 → atributos Sello, NoCertificado y
// Certificado inyectados en el nodo raíz.
//
// La cadena original se deriva de la forma canónica (C14N) del XML. El SAT la
// define con una hoja XSLT; el PAC la recalcula al timbrar, por lo que esta
// derivación es el punto de sustitución si un PAC exige la XSLT exacta.
type CSDSigner struct {
	cert tls.Certificate
}

// NewCSDSigner construye el firmador con el CSD ya cargado.
func NewCSDSigner(cert tls.Certificate) (*CSDSigner, error) {
	if _, ok := cert.PrivateKey.(*rsa.PrivateKey); !ok {
		return nil, fmt.Errorf("cfdi: el CSD debe incluir llave privada RSA")
	}
	if cert.Leaf == nil {
		if len(cert.Certificate) == 0 {
			return nil, fmt.Errorf("cfdi: el CSD no trae certificado")
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("cfdi: parsear certificado: %w", err)
		}
		cert.Leaf = leaf
	}
	return &CSDSigner{cert: cert}, nil
}

// Sign genera la cadena original del XML, la firma y regresa el documento con
// el sello inyectado en el nodo raíz.
func (s *CSDSigner) Sign(_ *cfdidom.Comprobante, xmlBytes []byte) (*appcfdi.SignedDocument, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("cfdi: XML vacío")
	}

	cadena, err := cadenaOriginal(xmlBytes)
	if err != nil {
		return nil, err
	}

	priv := s.cert.PrivateKey.(*rsa.PrivateKey)
	digest := sha256.Sum256([]byte(cadena))
	firma, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("cfdi: firmar cadena original: %w", err)
	}

	sello := base64.StdEncoding.EncodeToString(firma)
	noCertificado := NoCertificado(s.cert.Leaf)
	certificado := base64.StdEncoding.EncodeToString(s.cert.Leaf.Raw)

	signed, err := injectSello(xmlBytes, sello, noCertificado, certificado)
	if err != nil {
		return nil, err
	}

	return &appcfdi.SignedDocument{
		XML:            signed,
		Sello:          sello,
		NoCertificado:  noCertificado,
		Certificado:    certificado,
		CadenaOriginal: cadena,
	}, nil
}

var _ appcfdi.Signer = UnsignedSigner{}

// UnsignedSigner deja pasar el XML sin sello. Solo para desarrollo sin CSD
// cargado: ningún PAC productivo acepta un comprobante sin firmar.
type UnsignedSigner struct{}

// Sign regresa el documento tal cual, con la cadena original calculada.
func (UnsignedSigner) Sign(_ *cfdidom.Comprobante, xmlBytes []byte) (*appcfdi.SignedDocument, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("cfdi: XML vacío")
	}
	cadena, err := cadenaOriginal(xmlBytes)
	if err != nil {
		return nil, err
	}
	return &appcfdi.SignedDocument{XML: xmlBytes, CadenaOriginal: cadena}, nil
}

// cadenaOriginal deriva la cadena original de la forma canónica del XML.
func cadenaOriginal(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("cfdi: canonicalizar XML: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return "||" + cfdidom.Version + "|" + base64.StdEncoding.EncodeToString(digest[:]) + "||", nil
}

// injectSello escribe Sello/NoCertificado/Certificado como atributos del nodo
// raíz del comprobante ya serializado.
func injectSello(xmlBytes []byte, sello, noCertificado, certificado string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("cfdi: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("cfdi: documento sin raíz")
	}
	root.CreateAttr("Sello", sello)
	root.CreateAttr("NoCertificado", noCertificado)
	root.CreateAttr("Certificado", certificado)
	return doc.WriteToBytes()
}

// NoCertificado extrae el número de certificado de 20 dígitos que el SAT
// codifica en el serial del CSD: los bytes del serial son los dígitos ASCII.
func NoCertificado(cert *x509.Certificate) string {
	raw := cert.SerialNumber.Bytes()
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b >= '0' && b <= '9' {
			out = append(out, b)
		}
	}
	if len(out) == 20 {
		return string(out)
	}
	// Certificados no emitidos por el SAT (pruebas): serial decimal plano.
	return cert.SerialNumber.String()
}
