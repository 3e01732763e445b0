// Carga del Certificado de Sello Digital (CSD) desde .p12 o par PEM.

package cfdi

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// LoadCSD carga el certificado de sello digital del emisor. Acepta un archivo
// .p12/.pfx protegido con contraseña o un par PEM (certificado + llave).
func LoadCSD(certPath, keyPath, password string) (tls.Certificate, error) {
	if strings.HasSuffix(certPath, ".p12") || strings.HasSuffix(certPath, ".pfx") {
		return loadFromP12(certPath, password)
	}
	return loadFromPEM(certPath, keyPath)
}

func loadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("leer p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decodificar p12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

func loadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("cargar PEM: %w", err)
	}
	return cert, nil
}
