// Package render turns reports and receipts into self-contained HTML
// documents.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templates embed.FS

const (
	DateLayout     = "02-Jan-2006"
	DateTimeLayout = "02-Jan-2006 03:04 PM"
)

type Renderer struct {
	tmpl     *template.Template
	currency string
}

// New parses the embedded templates. currency prefixes every amount.
func New(currency string) (*Renderer, error) {
	r := &Renderer{currency: currency}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money":    r.Money,
		"date":     func(t time.Time) string { return t.Format(DateLayout) },
		"datetime": func(t time.Time) string { return t.Format(DateTimeLayout) },
		"dataURI":  DataURI,
		"fallback": Fallback,
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) Execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Money formats d with two decimals and thousands separators, e.g.
// "Rs. 1,234.50".
func (r *Renderer) Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	text := d.StringFixed(2)
	whole, frac, _ := strings.Cut(text, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	amount := sign + b.String() + "." + frac
	if r.currency == "" {
		return amount
	}
	return r.currency + " " + amount
}

// DataURI embeds binary content such as a logo or QR image. The MIME type is
// sniffed from the content.
func DataURI(data []byte) template.URL {
	if len(data) == 0 {
		return ""
	}
	mime := http.DetectContentType(data)
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// Fallback returns value unless it is blank.
func Fallback(fallback, value string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
