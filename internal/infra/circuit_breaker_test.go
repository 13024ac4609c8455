package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp down")

func breakerConReloj(cfg BreakerConfig) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker(cfg)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func fallar() error { return errSMTP }
func exito() error { return nil }

func TestCircuitBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	cb, _ := breakerConReloj(BreakerConfig{Name: "test", FailureThreshold: 2, CoolDown: time.Minute})

	assert.ErrorIs(t, cb.Execute(fallar), errSMTP)
	assert.Equal(t, BreakerClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fallar), errSMTP)
	assert.Equal(t, BreakerOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)
}

func TestCircuitBreaker_ExitoReiniciaContador(t *testing.T) {
	cb, _ := breakerConReloj(BreakerConfig{Name: "test", FailureThreshold: 2, CoolDown: time.Minute})

	_ = cb.Execute(fallar)
	require.NoError(t, cb.Execute(exito))
	_ = cb.Execute(fallar)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_MedioAbierto(t *testing.T) {
	cb, now := breakerConReloj(BreakerConfig{Name: "test", FailureThreshold: 1, SuccessThreshold: 2, CoolDown: time.Minute})

	_ = cb.Execute(fallar)
	require.Equal(t, BreakerOpen, cb.State())

	*now = now.Add(59 * time.Second)
	assert.Equal(t, BreakerOpen, cb.State())
	*now = now.Add(time.Second)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	// A failed probe reopens immediately.
	assert.ErrorIs(t, cb.Execute(fallar), errSMTP)
	assert.Equal(t, BreakerOpen, cb.State())

	*now = now.Add(time.Minute)
	require.NoError(t, cb.Execute(exito))
	assert.Equal(t, BreakerHalfOpen, cb.State())
	require.NoError(t, cb.Execute(exito))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{Name: "smtp"})
	assert.Equal(t, DefaultBreakerConfig("smtp"), cb.cfg)
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
