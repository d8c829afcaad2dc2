// Package compat resuelve diferencias entre versiones del formato de órdenes.
package compat

import (
	"strings"

	"golang.org/x/mod/semver"

	"delivered-status-service/internal/model"
)

// Versión a partir de la cual el email vive dentro de Billing.
const AccessorVersion = "v3.0.0"

// EmailSource es la capacidad que necesita el disparador del email.
type EmailSource interface {
	BillingEmail() string
}

// legacyOrder lee el campo plano de documentos previos a 3.0.
type legacyOrder struct{ o *model.Order }

func (l legacyOrder) BillingEmail() string {
	if l.o == nil {
		return ""
	}
	// algunos documentos migrados sólo tienen el campo nuevo
	if l.o.LegacyBillingEmail == "" {
		return l.o.Billing.Email
	}
	return l.o.LegacyBillingEmail
}

// ForVersion devuelve el accesor adecuado a la versión del formato.
// Una versión vacía o inválida se trata como actual.
func ForVersion(hostVersion string, o *model.Order) EmailSource {
	if isLegacy(hostVersion) {
		return legacyOrder{o: o}
	}
	return o
}

// BillingEmail resuelve el email del destinatario según la versión.
func BillingEmail(hostVersion string, o *model.Order) string {
	return strings.TrimSpace(ForVersion(hostVersion, o).BillingEmail())
}

func isLegacy(hostVersion string) bool {
	v := strings.TrimSpace(hostVersion)
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, AccessorVersion) < 0
}
