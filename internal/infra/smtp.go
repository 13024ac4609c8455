package infra

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"storevision/internal/config"

	"github.com/jordan-wright/email"
)

// ProductoAlerta is one line of a low-stock alert mail.
type ProductoAlerta struct {
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

// Mailer wraps SMTP configuration for sending notification emails.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured reports whether an SMTP host was provided.
func (m *Mailer) Configured() bool { return m.host != "" }

// SendAlertaStock mails the list of products at or below their minimum.
func (m *Mailer) SendAlertaStock(to string, productos []ProductoAlerta) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	e := BuildAlertaStockEmail(m.user, to, productos)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

// BuildAlertaStockEmail composes the alert with a plain-text and an HTML body.
func BuildAlertaStockEmail(from, to string, productos []ProductoAlerta) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Alerta de stock: %d producto(s) bajo el mínimo", len(productos))

	var txt, htm strings.Builder
	txt.WriteString("Los siguientes productos están en o por debajo del stock mínimo:\n\n")
	htm.WriteString("<p>Los siguientes productos están en o por debajo del stock mínimo:</p>")
	htm.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Código</th><th>Producto</th><th>Stock</th><th>Mínimo</th></tr>")
	for _, p := range productos {
		fmt.Fprintf(&txt, "- %s %s: stock %d (mínimo %d)\n", p.Codigo, p.Nombre, p.StockActual, p.StockMinimo)
		fmt.Fprintf(&htm, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>",
			html.EscapeString(p.Codigo), html.EscapeString(p.Nombre), p.StockActual, p.StockMinimo)
	}
	htm.WriteString("</table>")

	e.Text = []byte(txt.String())
	e.HTML = []byte(htm.String())
	return e
}
