package export

import (
	"html/template"
	"io"

	"github.com/andy/invoicer/internal/render"
)

var htmlTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 20px; font-family: system-ui, -apple-system, sans-serif; background: #ffffff; color: #111827; }
    .invoice-container { max-width: 210mm; margin: 0 auto; background: white; padding: 20mm; box-sizing: border-box; }
    .header { display: flex; justify-content: space-between; align-items: flex-start; padding-bottom: 16px; border-bottom: 1px solid #e5e7eb; }
    .issuer-name { font-size: 22px; font-weight: 700; margin: 0 0 4px; }
    .aside { text-align: right; }
    .aside .title { font-size: 32px; font-weight: 700; color: #0891b2; margin: 0; }
    .muted { color: #6b7280; font-size: 12px; margin: 2px 0; }
    .label { color: #6b7280; font-size: 10px; margin: 8px 0 0; }
    .strong { font-weight: 700; font-size: 14px; margin: 0; }
    section { margin-top: 28px; }
    h4 { color: #0891b2; font-size: 11px; text-transform: uppercase; letter-spacing: 0.05em; margin: 0 0 6px; }
    .client { font-size: 16px; font-weight: 700; margin: 0; }
    .intro { font-style: italic; font-size: 13px; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th { background: #f3f4f6; font-size: 11px; text-transform: uppercase; padding: 8px 10px; }
    td { padding: 8px 10px; border-bottom: 1px solid #e5e7eb; }
    tr:nth-child(even) td { background: #f9fafb; }
    .left { text-align: left; }
    .right { text-align: right; }
    .totals { margin-left: auto; width: 280px; font-size: 13px; }
    .totals div { display: flex; justify-content: space-between; padding: 3px 0; }
    .totals .emphasis { font-size: 18px; font-weight: 700; border-top: 1px solid #9ca3af; margin-top: 4px; padding-top: 10px; }
    .footer { text-align: center; color: #6b7280; font-size: 11px; border-top: 1px solid #e5e7eb; padding-top: 12px; }
    a { color: #2563eb; }
  </style>
</head>
<body>
  <div class="invoice-container">
{{- range .Blocks}}
{{- if eq .Kind "header"}}
    <header class="header">
      <div>
        {{- range $i, $line := .Lines}}
        {{- if eq $i 0}}
        <p class="issuer-name">{{$line}}</p>
        {{- else}}
        <p class="muted">{{$line}}</p>
        {{- end}}
        {{- end}}
      </div>
      <div class="aside">
        {{- range $i, $line := .Aside}}
        {{- if eq $i 0}}
        <p class="title">{{$line}}</p>
        {{- else if eq $i 1}}
        <p class="label">{{$line}}</p>
        {{- else if eq $i 2}}
        <p class="strong">{{$line}}</p>
        {{- else}}
        <p class="muted">{{$line}}</p>
        {{- end}}
        {{- end}}
      </div>
    </header>
{{- else if eq .Kind "bill-to"}}
    <section class="bill-to">
      <h4>{{.Title}}</h4>
      {{- range $i, $line := .Lines}}
      <p class="{{if eq $i 0}}client{{else}}muted{{end}}">{{$line}}</p>
      {{- end}}
    </section>
{{- else if eq .Kind "intro"}}
    <section>
      {{- range .Lines}}
      <p class="intro">{{.}}</p>
      {{- end}}
    </section>
{{- else if eq .Kind "items"}}
    <section>
      <table>
        <thead>
          <tr>
            {{- range .Table.Columns}}
            <th class="{{if eq .Align 1}}right{{else}}left{{end}}">{{.Title}}</th>
            {{- end}}
          </tr>
        </thead>
        <tbody>
          {{- $cols := .Table.Columns}}
          {{- range .Table.Rows}}
          <tr>
            {{- range $i, $cell := .}}
            <td class="{{if eq (index $cols $i).Align 1}}right{{else}}left{{end}}">{{$cell}}</td>
            {{- end}}
          </tr>
          {{- end}}
        </tbody>
      </table>
    </section>
{{- else if eq .Kind "totals"}}
    <section class="totals">
      {{- range .Pairs}}
      <div{{if .Emphasis}} class="emphasis"{{end}}><span>{{.Label}}</span><span>{{.Value}}</span></div>
      {{- end}}
    </section>
{{- else if eq .Kind "payment"}}
    <section class="payment">
      <h4>{{.Title}}</h4>
      <p>Payment Link: <a href="{{.Link}}">{{.Link}}</a></p>
      {{- $link := .Link}}
      {{- range .Lines}}
      {{- if ne . (printf "Payment Link: %s" $link)}}
      <p class="muted">{{.}}</p>
      {{- end}}
      {{- end}}
    </section>
{{- else if eq .Kind "notes"}}
    <section class="notes">
      <h4>{{.Title}}</h4>
      {{- range .Lines}}
      <p>{{.}}</p>
      {{- end}}
    </section>
{{- else if eq .Kind "footer"}}
    <section class="footer">
      {{- range .Lines}}
      <p>{{.}}</p>
      {{- end}}
    </section>
{{- end}}
{{- end}}
  </div>
</body>
</html>
`))

// WriteHTML serializes the page into a standalone document with inline styles
func WriteHTML(w io.Writer, p *render.Page) error {
	if p == nil {
		return ErrNoRenderTarget
	}
	return htmlTemplate.Execute(w, p)
}
