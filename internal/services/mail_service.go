// services/mail_service.go
package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/config"
	"bettybots/pkg/metrics"
)

type IMailService interface {
	// Send never fails loudly. It reports false when mail is not configured,
	// the recipient is empty or the SMTP exchange failed.
	Send(to, subject, body string) bool
	// SendSubscriptionConfirmation includes the embed snippet when one is given.
	SendSubscriptionConfirmation(tenantID, to string, provider db_models.Provider, snippet string) bool
	SendLeadNotification(tenant *db_models.Tenant, lead *db_models.Lead) bool
}

type smtpMailService struct {
	cfg      config.SMTP
	brand    string
	baseURL  string
	log      *zap.Logger
	htmlTpl  *template.Template
	textTpl  *texttemplate.Template
	sendFunc func(to string, msg []byte) error
}

func NewSMTPMailService(cfg *config.Config, log *zap.Logger) IMailService {
	s := &smtpMailService{
		cfg:     cfg.SMTP,
		brand:   cfg.BrandName,
		baseURL: cfg.BaseURL,
		log:     log,
		htmlTpl: template.Must(template.New("html").Parse(baseHTMLTemplate)),
		textTpl: texttemplate.Must(texttemplate.New("text").Parse(plainTextTemplate)),
	}
	s.sendFunc = s.deliver
	return s
}

// ------------------- Public API -------------------

func (s *smtpMailService) Send(to, subject, body string) bool {
	return s.sendEmail("generic", to, EmailData{Title: subject, Intro: body})
}

func (s *smtpMailService) SendSubscriptionConfirmation(tenantID, to string, provider db_models.Provider, snippet string) bool {
	return s.sendEmail("subscription", to, EmailData{
		Snippet:   snippet,
		Title: fmt.Sprintf("Votre abonnement %s est actif", s.brand),
		Intro: fmt.Sprintf("Merci ! Votre paiement %s a bien été reçu. Votre assistant %q est prêt : récupérez le code à intégrer sur votre site.",
			providerLabel(provider), tenantID),
		ButtonURL: fmt.Sprintf("%s/bot?tenant=%s", s.baseURL, tenantID),
		ButtonTxt: "Voir mon assistant",
	})
}

func (s *smtpMailService) SendLeadNotification(tenant *db_models.Tenant, lead *db_models.Lead) bool {
	return s.sendEmail("lead", tenant.Email, EmailData{
		Title: fmt.Sprintf("Nouveau contact : %s", lead.Name),
		Intro: fmt.Sprintf("%s (%s) a laissé ses coordonnées via votre assistant.", lead.Name, lead.Email),
		Lines: []string{"Besoin : " + lead.Need},
	})
}

func (s *smtpMailService) sendEmail(kind, to string, data EmailData) bool {
	to = strings.TrimSpace(to)
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" || to == "" {
		s.log.Debug("email skipped", zap.String("kind", kind), zap.Bool("has_recipient", to != ""))
		return false
	}

	data.AppName = s.brand
	data.Year = time.Now().Year()

	html, text, err := s.renderEmail(data)
	if err != nil {
		s.log.Error("email render failed", zap.String("kind", kind), zap.Error(err))
		metrics.ObserveEmail(kind, false)
		return false
	}

	if err := s.sendFunc(to, s.buildMessage(to, data.Title, html, text)); err != nil {
		s.log.Warn("email send failed",
			zap.String("kind", kind),
			zap.String("to", to),
			zap.Error(err))
		metrics.ObserveEmail(kind, false)
		return false
	}

	metrics.ObserveEmail(kind, true)
	return true
}

func providerLabel(p db_models.Provider) string {
	switch p {
	case db_models.ProviderStripe:
		return "Stripe"
	case db_models.ProviderPayPal:
		return "PayPal"
	default:
		return string(p)
	}
}

// ------------------- Rendering -------------------

type EmailData struct {
	Title     string
	Intro     string
	Lines     []string
	ButtonURL string
	ButtonTxt string
	Snippet   string
	AppName   string
	Year      int
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f8fafc; color: #0f172a; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .wrapper { width: 100%; padding: 40px 16px; box-sizing: border-box; }
    .container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 16px; overflow: hidden; box-shadow: 0 20px 60px rgba(0, 0, 0, 0.08); }
    .header { padding: 28px 32px 20px; border-bottom: 1px solid rgba(0, 0, 0, 0.06); }
    .brand { font-weight: 700; font-size: 20px; color: #2563eb; }
    .hero { padding: 32px; }
    h1 { margin: 0 0 16px; font-size: 24px; line-height: 1.3; }
    p { margin: 0 0 16px; line-height: 1.7; color: #475569; font-size: 16px; }
    .btn { display: inline-block; padding: 14px 28px; background: #2563eb; color: #ffffff !important; text-decoration: none; border-radius: 12px; font-weight: 600; }
    .snippet { padding: 12px; background: #f1f5f9; border-radius: 8px; font-size: 12px; white-space: pre-wrap; word-break: break-all; }
    .muted { color: #64748b; font-size: 13px; }
    .footer { padding: 20px 32px; color: #64748b; font-size: 13px; text-align: center; background: #f8fafc; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header"><div class="brand">{{.AppName}}</div></div>
      <div class="hero">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{range .Lines}}<p>{{.}}</p>{{end}}
        {{if .Snippet}}
          <p>Code à coller avant la balise &lt;/body&gt; de votre site :</p>
          <pre class="snippet">{{.Snippet}}</pre>
        {{end}}
        {{if .ButtonURL}}
          <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
          <p class="muted">Si le bouton ne fonctionne pas : {{.ButtonURL}}</p>
        {{end}}
      </div>
      <div class="footer">© {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{range .Lines}}
{{.}}
{{end}}
{{if .Snippet}}
Code à coller avant la balise </body> de votre site :

{{.Snippet}}

{{end}}{{if .ButtonURL}}{{.ButtonTxt}} : {{.ButtonURL}}
{{end}}
-- {{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// ------------------- SMTP Send -------------------

func (s *smtpMailService) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *smtpMailService) deliver(to string, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		// SMTPS (implicit TLS, usually port 465)
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		}
	}

	if err = c.Auth(auth); err != nil {
		return err
	}
	if err = c.Mail(s.from()); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.from()
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("utf-8", name), s.from())
}
