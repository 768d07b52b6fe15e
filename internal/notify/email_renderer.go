package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"

	"github.com/shanehull/inforanger/internal/types"
)

// RenderedMessage is an email ready to send, with HTML body and plain text
// alternative.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// digestData is the template input for one rendered digest.
type digestData struct {
	Title    string
	Response types.NewsResponse
	Link     string
}

// HTMLEmailRenderer renders a normalized news response as an HTML email
// with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default digest template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("digest").Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces the digest email for one query run.
func (r *HTMLEmailRenderer) Render(title string, resp types.NewsResponse, link string) (*RenderedMessage, error) {
	data := digestData{Title: title, Response: resp, Link: link}

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: fmt.Sprintf("Info Ranger: %s", title),
		Text:    HTMLToText(htmlBuf.String()),
		HTML:    htmlBuf.String(),
	}, nil
}

// HTMLToText strips markup from an HTML fragment, keeping text content with
// newlines after block elements. Used for email plain text alternatives.
func HTMLToText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "br", "hr":
				sb.WriteString("\n")
			}
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String())
}
