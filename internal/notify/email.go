package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"content_publisher/internal/domain"
)

var publishedHTML = template.Must(template.New("published").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;line-height:1.5">
<h2>Published: {{.Title}}</h2>
<p>Your approved article is now live at <a href="{{.URL}}">{{.URL}}</a>.</p>
{{if .Posted}}<p>Shared on:</p>
<ul>
{{range .Posted}}<li>{{.Platform}}{{if .PostURL}}: <a href="{{.PostURL}}">{{.PostURL}}</a>{{end}}</li>
{{end}}</ul>
{{end}}{{if .Failed}}<p>Could not be shared on:</p>
<ul>
{{range .Failed}}<li>{{.Platform}}: {{.Error}}</li>
{{end}}</ul>
{{end}}</body>
</html>
`))

var approvalHTML = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;line-height:1.5">
<h2>Approval requested: {{.Title}}</h2>
{{if .Excerpt}}<p>{{.Excerpt}}</p>
{{end}}<p><a href="{{.PreviewURL}}" style="display:inline-block;padding:10px 20px;text-decoration:none;border-radius:5px;background-color:#007bff;color:#fff;">Review article</a></p>
<p>This link works once: after you approve or reject, it only shows the decision.</p>
</body>
</html>
`))

type publishedView struct {
	PublishedMessage
	Posted []domain.PublishResult
	Failed []domain.PublishResult
}

// RenderPublished builds the confirmation email for msg.
func RenderPublished(msg PublishedMessage) (subject, html, text string, err error) {
	view := publishedView{PublishedMessage: msg}
	for _, r := range msg.Results {
		if r.Success {
			view.Posted = append(view.Posted, r)
		} else {
			view.Failed = append(view.Failed, r)
		}
	}

	var buf bytes.Buffer
	if err := publishedHTML.Execute(&buf, view); err != nil {
		return "", "", "", fmt.Errorf("render published email: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Published: %s\n%s\n", msg.Title, msg.URL)
	for _, r := range view.Posted {
		fmt.Fprintf(&sb, "\n+ %s %s", r.Platform, r.PostURL)
	}
	for _, r := range view.Failed {
		fmt.Fprintf(&sb, "\n- %s: %s", r.Platform, r.Error)
	}

	subject = fmt.Sprintf("Published: %s (%d/%d platforms)", msg.Title, len(view.Posted), len(msg.Results))
	return subject, buf.String(), strings.TrimRight(sb.String(), "\n") + "\n", nil
}

// RenderApprovalRequest builds the email that carries the preview link.
func RenderApprovalRequest(item *domain.ContentItem, previewURL string) (subject, html, text string, err error) {
	view := struct {
		Title      string
		Excerpt    string
		PreviewURL string
	}{item.Title, item.Excerpt, previewURL}

	var buf bytes.Buffer
	if err := approvalHTML.Execute(&buf, view); err != nil {
		return "", "", "", fmt.Errorf("render approval email: %w", err)
	}

	text = fmt.Sprintf("Approval requested: %s\n\nReview it here: %s\n", item.Title, previewURL)
	return "Approval requested: " + item.Title, buf.String(), text, nil
}
