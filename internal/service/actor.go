package service

import (
	"time"

	"github.com/google/uuid"
)

// Actor identifies who performs an operation. It is built from the JWT
// claims by the handler layer.
type Actor struct {
	UsuarioID uuid.UUID
	Rol       string
	IP        string
}

// ahora is the clock used for every persisted timestamp. Times are stored in
// UTC so range filters compare correctly on every database.
var ahora = func() time.Time { return time.Now().UTC() }

const formatoFecha = "2006-01-02"

// inicioDelDia truncates t to midnight UTC.
func inicioDelDia(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// rangoFechas parses an inclusive YYYY-MM-DD range into the half-open
// interval [desde, hasta+1d). Empty bounds take the given defaults.
func rangoFechas(desde, hasta string, defDesde, defHasta time.Time) (time.Time, time.Time, error) {
	d := inicioDelDia(defDesde)
	h := inicioDelDia(defHasta)
	if desde != "" {
		t, err := time.Parse(formatoFecha, desde)
		if err != nil {
			return time.Time{}, time.Time{}, ErrRangoFechasInvalido
		}
		d = t
		if hasta == "" {
			h = t
		}
	}
	if hasta != "" {
		t, err := time.Parse(formatoFecha, hasta)
		if err != nil {
			return time.Time{}, time.Time{}, ErrRangoFechasInvalido
		}
		h = t
	}
	if h.Before(d) {
		return time.Time{}, time.Time{}, ErrRangoFechasInvalido
	}
	return d, h.AddDate(0, 0, 1), nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
