package documents

import "html/template"

const workOrderHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>작업지시서 {{.ItemCode}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { text-align: center; border-bottom: 2px solid #000; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: center; }
th { background: #d9d9d9; }
.meta { margin-top: 12px; }
</style>
</head>
<body>
<h1>작업지시서</h1>
<table class="meta">
<tr><th>품목코드</th><td>{{.ItemCode}}</td><th>품목명</th><td>{{.ItemName}}</td></tr>
<tr><th>발주업체</th><td>{{.CompanyName}}</td><th>대표자</th><td>{{.CompanyCEO}}</td></tr>
<tr><th>분류</th><td>{{.Category}}</td><th>색상</th><td>{{.Color}}</td></tr>
<tr><th>도장방식</th><td>{{.CoatingMethod}}</td><th>비고</th><td>{{.Remark}}</td></tr>
</table>
{{if .Steps}}
<table>
<tr><th>순번</th><th>공정코드</th><th>공정명</th><th>표준시간(분)</th></tr>
{{range .Steps}}
<tr><td>{{.Position}}</td><td>{{.ProcessCode}}</td><td>{{.ProcessName}}</td><td>{{.StandardTime}}</td></tr>
{{end}}
</table>
{{end}}
<p>발행일시: {{.IssuedAt.Format "2006-01-02 15:04"}}</p>
</body>
</html>`

const shipmentInvoiceHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>출고증 {{.MovementNo}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { text-align: center; border-bottom: 2px solid #000; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: center; }
th { background: #d9d9d9; }
</style>
</head>
<body>
<h1>출고증</h1>
<table>
<tr><th>출고번호</th><td>{{.MovementNo}}</td><th>LOT번호</th><td>{{.LotNo}}</td></tr>
<tr><th>품목코드</th><td>{{.ItemCode}}</td><th>품목명</th><td>{{.ItemName}}</td></tr>
<tr><th>업체명</th><td>{{.CompanyName}}</td><th>수량</th><td>{{.Quantity}}</td></tr>
<tr><th>출고일자</th><td>{{.Date.Format "2006-01-02"}}</td><th>비고</th><td>{{.Remark}}</td></tr>
</table>
<p>발행일시: {{.IssuedAt.Format "2006-01-02 15:04"}}</p>
</body>
</html>`

var (
	workOrderTemplate       = template.Must(template.New("workorder").Parse(workOrderHTML))
	shipmentInvoiceTemplate = template.Must(template.New("invoice").Parse(shipmentInvoiceHTML))
)
