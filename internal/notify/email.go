package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"
	"strings"

	"paperwatch/internal/paper"
)

// EmailConfig is the SMTP delivery configuration.
type EmailConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Email sends an HTML digest of surfaced papers, grouped by publication
// date descending.
type Email struct {
	cfg  EmailConfig
	tmpl *template.Template
}

const digestTemplate = `<html>
<head>
<style>
  .paper { margin-bottom: 20px; padding: 10px; border: 1px solid #ddd; }
  .title { font-size: 18px; color: #2c3e50; margin-bottom: 10px; }
  .meta { color: #666; font-size: 14px; margin-bottom: 10px; }
  .summary { background-color: #f8f9fa; padding: 10px; border-radius: 4px; }
</style>
</head>
<body>
<h1>新着論文のお知らせ</h1>
{{range .Dates}}
<h2>{{.Date}}</h2>
{{range .Papers}}
<div class="paper">
  <div class="title">{{.Title}}</div>
  {{if and .TranslatedTitle (ne .TranslatedTitle .Title)}}<div class="title-ja">{{.TranslatedTitle}}</div>{{end}}
  <div class="meta">
    著者: {{join .Authors ", "}}<br>
    カテゴリー: {{.PrimaryCategory}}
  </div>
  <div class="summary">
    <h3>要約:</h3>
    <p>{{if .TranslatedSummary}}{{.TranslatedSummary}}{{else}}要約なし{{end}}</p>
  </div>
  <p><a href="{{.PDFURL}}">PDF を開く</a></p>
</div>
{{end}}
{{end}}
</body>
</html>`

func NewEmail(cfg EmailConfig) (*Email, error) {
	if cfg.Server == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("email notifier misconfigured: server, from and to are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}

	return &Email{cfg: cfg, tmpl: tmpl}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, papers []paper.Enriched) error {
	if len(papers) == 0 {
		return nil
	}

	body, err := e.buildDigest(papers)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("新着論文のお知らせ (%d件)", len(papers))
	msg := e.buildMessage(subject, body)

	addr := fmt.Sprintf("%s:%d", e.cfg.Server, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Server)

	if err := smtp.SendMail(addr, auth, e.cfg.From, e.cfg.To, msg); err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}

	slog.Info("sent notification email", "papers", len(papers), "recipients", len(e.cfg.To))
	return nil
}

type dateSection struct {
	Date   string
	Papers []paper.Enriched
}

func (e *Email) buildDigest(papers []paper.Enriched) ([]byte, error) {
	byDate := make(map[string][]paper.Enriched)
	for _, p := range papers {
		date := p.PublishedAt.UTC().Format("2006-01-02")
		byDate[date] = append(byDate[date], p)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	sections := make([]dateSection, 0, len(dates))
	for _, date := range dates {
		sections = append(sections, dateSection{Date: date, Papers: byDate[date]})
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, struct{ Dates []dateSection }{sections}); err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Email) buildMessage(subject string, body []byte) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)
	return msg.Bytes()
}
