// ABOUTME: Minimal HTML pages for browsing stories in the development backend.
// ABOUTME: Renders the catalog and a story view with markdown-formatted content.
package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
)

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"markdown": markdownToHTML,
}).Parse(indexPage + storyPage))

// markdownToHTML converts markdown to HTML with goldmark. Raw HTML in the
// input is stripped to prevent XSS.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

const indexPage = `{{define "index"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Fable Stories</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { border-bottom: 2px solid #7c5cbf; padding-bottom: 0.3rem; }
li { margin: 0.4rem 0; }
a { color: #7c5cbf; }
.meta { color: #888; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Fable Stories</h1>
{{if .Stories}}
<ul>
{{range .Stories}}
<li><a href="/stories/{{.ID}}">{{.Title}}</a> <span class="meta">{{len .Messages}} messages, {{len .Elements}} elements</span></li>
{{end}}
</ul>
{{else}}
<p>No stories yet. Upload a PDF or create one through the API.</p>
{{end}}
</body>
</html>
{{end}}`

const storyPage = `{{define "story"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { border-bottom: 2px solid #7c5cbf; padding-bottom: 0.3rem; }
a { color: #7c5cbf; }
.content { background: #faf8ff; border: 1px solid #e2dcf5; border-radius: 6px; padding: 1rem; }
.element { margin: 0.3rem 0; }
.element b { color: #444; }
.msg { margin: 0.5rem 0; padding: 0.5rem 0.8rem; border-radius: 6px; }
.msg.user { background: #eef4ff; }
.msg.bot { background: #f5f0ff; }
.msg.system { background: #f2f2f2; color: #666; }
.sender { font-size: 0.75rem; color: #999; text-transform: uppercase; }
</style>
</head>
<body>
<p><a href="/">&larr; All stories</a></p>
<h1>{{.Title}}</h1>
<div class="content">{{markdown .Content}}</div>
{{if .Elements}}
<h2>Elements</h2>
{{range .Elements}}
<div class="element"><b>{{.Type}}</b>: {{.Name}}{{if .Description}} &mdash; {{.Description}}{{end}}</div>
{{end}}
{{end}}
{{if .Messages}}
<h2>Conversation</h2>
{{range .Messages}}
<div class="msg {{.Sender}}"><div class="sender">{{.Sender}}</div>{{markdown .Content}}</div>
{{end}}
{{end}}
</body>
</html>
{{end}}`

// handleIndex renders the story catalog as an HTML page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	stories, err := s.store.ListStories()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "index", map[string]any{"Stories": stories}); err != nil {
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}

// handleStoryPage renders one story with its elements and transcript.
func (s *Server) handleStoryPage(w http.ResponseWriter, r *http.Request) {
	story, err := s.store.GetStory(chi.URLParam(r, "storyID"))
	if errors.Is(err, ErrStoryNotFound) {
		http.Error(w, "story not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "story", story); err != nil {
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}
