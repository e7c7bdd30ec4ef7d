package scrape

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpbot/internal/domain"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<meta property="og:title" content="Cancelling a guest reservation | Help Center"/>
<meta property="og:description" content="How to cancel a reservation as a homeowner."/>
</head>
<body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"articleContent":{"blocks":[
  {"type":"paragraph","text":"Open the reservation. "},
  {"type":"image","url":"ignored.png"},
  {"type":"paragraph","text":"Press cancel."}
]}}}}
</script>
</body>
</html>`

func TestParseArticle(t *testing.T) {
	doc, err := ParseArticle(strings.NewReader(articleHTML), "Homeowners")
	require.NoError(t, err)

	assert.Equal(t, "Cancelling a guest reservation | Help Center", doc.Title)
	assert.Equal(t, "How to cancel a reservation as a homeowner.", doc.ShortDescription)
	assert.Equal(t, "Open the reservation. Press cancel.", doc.Article)
	assert.Equal(t, "Homeowners", doc.Category)
}

func TestParseArticleMissingTitle(t *testing.T) {
	_, err := ParseArticle(strings.NewReader("<html><head></head></html>"), "Homeowners")
	assert.Error(t, err)
}

func TestArticleLinks(t *testing.T) {
	page := `<html><body>
	<a href="/en/articles/111-cancelling-a-reservation">Cancelling</a>
	<a href="https://support.example.com/en/articles/222-payout-methods">Payouts</a>
	<a href="/en/articles/111-cancelling-a-reservation">Duplicate</a>
	<a href="/en/collections/999-homeowners">Not an article</a>
	<a href="/en/articles/">No id</a>
	</body></html>`

	base, err := url.Parse("https://support.example.com/en/collections/1-homeowners")
	require.NoError(t, err)

	links, err := ArticleLinks(base, strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://support.example.com/en/articles/111-cancelling-a-reservation",
		"https://support.example.com/en/articles/222-payout-methods",
	}, links)
}

func TestWriteDocumentSanitizesTitle(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDocument(domain.Document{
		Title:    "Cancelling a guest reservation",
		Article:  "body",
		Category: "Homeowners",
	}, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Cancelling_a_guest_reservation.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Cancelling a guest reservation"`)
}

func TestArticleSlug(t *testing.T) {
	assert.Equal(t, "cancelling-a-reservation", articleSlug("https://x/en/articles/111-cancelling-a-reservation"))
	assert.Equal(t, "payouts", articleSlug("https://x/en/articles/2-payouts/"))
}
