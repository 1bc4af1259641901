package mail

import (
	"fmt"
	"html/template"
	"strings"

	"NewsletterDigest/internal/domain"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; max-width: 640px; margin: 0 auto;">
{{range .Articles}}
  <article style="margin-bottom: 32px;">
    <h2>{{.Title}}</h2>
    <div>{{.Body}}</div>
  </article>
{{end}}
  <hr>
  <p style="font-size: 12px; color: #888;">
    You are receiving this digest because you subscribed to it.
    <a href="{{.UnsubscribeURL}}">Unsubscribe</a>
  </p>
</body>
</html>
`))

type digestArticle struct {
	Title string
	// Body is model-produced markup that already went through fence
	// stripping; it is rendered as-is.
	Body template.HTML
}

type digestData struct {
	Articles       []digestArticle
	UnsubscribeURL string
}

// renderDigest builds the personalized HTML body for one recipient,
// embedding all articles and their unsubscribe link.
func renderDigest(articles []domain.Article, unsubscribeBase, recipient string) (string, error) {
	data := digestData{
		UnsubscribeURL: fmt.Sprintf("%s/%s", strings.TrimSuffix(unsubscribeBase, "/"), recipient),
	}
	for _, article := range articles {
		data.Articles = append(data.Articles, digestArticle{
			Title: article.Title,
			Body:  template.HTML(article.Content),
		})
	}

	var b strings.Builder
	if err := digestTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}
