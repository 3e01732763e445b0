package erp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAdapterRegistraErrores(t *testing.T) {
	base := NewBaseAdapter("prueba", "Adaptador de prueba", "1.0")

	base.RecordError("sync_customer", errors.New("HTTP 502"))
	base.RecordError("sync_invoice", errors.New("HTTP 503"))
	base.RecordError("sync_invoice", nil) // nil no cuenta

	errs := base.GetErrors()
	require.Len(t, errs, 2)
	assert.Equal(t, "sync_customer", errs[0].Operation)

	info := base.Info([]string{"customers"})
	assert.Equal(t, 2, info.ErrorCount)

	base.ClearErrors()
	assert.Empty(t, base.GetErrors())
	assert.Zero(t, base.Info(nil).ErrorCount)
}

func TestIsUnsupported(t *testing.T) {
	base := NewBaseAdapter("prueba", "Adaptador de prueba", "1.0")

	err := base.Unsupported("sync_bill")
	assert.True(t, IsUnsupported(err))
	assert.False(t, IsUnsupported(errors.New("otra cosa")))
}
