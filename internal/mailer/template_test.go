package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCatalogPublished(t *testing.T) {
	body, err := RenderCatalogPublished(CatalogPublishedData{
		UserName:    "Ada Rossi",
		BrandName:   "Acme",
		CatalogName: "FW25 Preorder",
		CatalogCode: "CATG000000042",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Hi Ada Rossi")
	assert.Contains(t, body, "<strong>Acme</strong>")
	assert.Contains(t, body, "FW25 Preorder")
	assert.Contains(t, body, "CATG000000042")
}

func TestRenderCatalogPublishedWithoutName(t *testing.T) {
	body, err := RenderCatalogPublished(CatalogPublishedData{
		UserName:    "Ada Rossi",
		BrandName:   "Acme",
		CatalogCode: "CATG000000001",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "</strong> (code", "catalog name block must be omitted when empty")
	assert.Contains(t, body, "(code CATG000000001)")
}

func TestMailerDisabledWithoutHost(t *testing.T) {
	m := NewMailer(Config{}, nil)
	assert.False(t, m.Enabled())
	assert.Error(t, m.Send("a@b.example", "subject", "<p>hi</p>"))
}
