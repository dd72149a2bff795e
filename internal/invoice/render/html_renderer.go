package render

import (
	"bytes"
	"html/template"
	"time"

	invoicedomain "github.com/gowander/waypost/internal/invoice/domain"
	"github.com/gowander/waypost/internal/invoice/format"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .invoice-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 60px;
      border-radius: 4px;
    }
    .header { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .header h1 { margin: 0; font-size: 24px; font-weight: 700; }
    .label {
      font-size: 11px;
      text-transform: uppercase;
      color: #8792a2;
      margin-bottom: 6px;
      font-weight: 600;
      letter-spacing: 0.3px;
    }
    .value { font-size: 14px; line-height: 1.5; color: #1a1f36; }
    .meta-grid { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .col { flex: 1; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
    th {
      text-align: left;
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding: 10px 0;
      font-weight: 600;
    }
    td {
      padding: 16px 0;
      border-bottom: 1px solid #e3e8ee;
      font-size: 14px;
      vertical-align: top;
    }
    .td-right { text-align: right; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .total-row {
      display: flex;
      justify-content: space-between;
      width: 250px;
      padding: 6px 0;
      font-size: 14px;
    }
    .total-final {
      border-top: 1px solid #e3e8ee;
      margin-top: 10px;
      padding-top: 10px;
      font-weight: 700;
      font-size: 16px;
    }
  </style>
</head>
<body>
  <div class="invoice-card">
    <div class="header">
      <div>
        <h1>Invoice</h1>
        <div class="label" style="margin-top: 12px;">Invoice number</div>
        <div class="value">{{.Number}}</div>
        <div class="label" style="margin-top: 12px;">Booking reference</div>
        <div class="value">{{.BookingReference}}</div>
      </div>
      <div class="value" style="text-align: right;">
        <strong>{{.SupplierName}}</strong><br>
        {{.SupplierEmail}}
      </div>
    </div>

    <div class="meta-grid">
      <div class="col">
        <div class="label">Bill to</div>
        <div class="value">
          <strong>{{.CustomerName}}</strong><br>
          {{.CustomerEmail}}
        </div>
      </div>
      <div class="col" style="flex: 0 0 200px;">
        <div class="label">Date issued</div>
        <div class="value">{{formatDate .IssuedAt}}</div>
        <div class="label" style="margin-top: 16px;">Travel date</div>
        <div class="value">{{.TravelDate}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 50%;">Description</th>
          <th class="td-right">Qty</th>
          <th class="td-right">Unit price</th>
          <th class="td-right">Amount</th>
        </tr>
      </thead>
      <tbody>
        <tr>
          <td>{{.TourTitle}} &mdash; {{.OptionName}}</td>
          <td class="td-right">{{.PartySize}}</td>
          <td class="td-right">{{formatMoney .UnitAmount .Currency}}</td>
          <td class="td-right">{{formatMoney .TotalAmount .Currency}}</td>
        </tr>
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row total-final">
        <span>Total paid</span>
        <span>{{formatMoney .TotalAmount .Currency}}</span>
      </div>
    </div>
  </div>
</body>
</html>
`

type Renderer interface {
	RenderHTML(snapshot *invoicedomain.Snapshot) ([]byte, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

// NewRenderer parses the invoice template once. Rendering is pure: the
// same snapshot always yields identical bytes.
func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney": format.FormatMoney,
		"formatDate":  formatDate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(snapshot *invoicedomain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}
