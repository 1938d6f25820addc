package mailer

import (
	"html/template"
	"strings"
)

// CatalogPublishedData feeds the catalog-published email body.
type CatalogPublishedData struct {
	UserName    string
	BrandName   string
	CatalogName string
	CatalogCode string
}

var catalogPublishedTmpl = template.Must(template.New("catalog-published").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi {{.UserName}},</p>
  <p><strong>{{.BrandName}}</strong> has just published a new catalog{{if .CatalogName}}: <strong>{{.CatalogName}}</strong>{{end}} (code {{.CatalogCode}}).</p>
  <p>Log in to your account to browse the list and place your order.</p>
  <p>Modavia Wholesale</p>
</body>
</html>`))

// RenderCatalogPublished returns the HTML body for a catalog-published email.
func RenderCatalogPublished(data CatalogPublishedData) (string, error) {
	var b strings.Builder
	if err := catalogPublishedTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
