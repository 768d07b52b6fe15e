package notify

// emailHTMLTemplate renders a news digest as a simple styled HTML document
// with one unit per news item and a source link footer.
const emailHTMLTemplate = `<html>
<head>
<style>
    .news-unit { margin-bottom: 30px; }
    .category { color: #333333; border-bottom: 2px solid #000080; padding-bottom: 4px; }
    .title { color: #000080; margin-bottom: 5px; }
    .description { margin: 0px 0px 10px 0px; }
    .item-link { font-size: 0.9em; }
    hr { border: 1px solid #f1f1f1; }
</style>
</head>
<body>
<div class="news-items-container">
{{- range .Response.NewsItems }}
    <h1 class="category">📌 {{ .Category }}</h1>
    {{- range .NewsItems }}
    <div class="news-unit">
        <h2 class="title">{{ .Title }}</h2>
        <p class="description">{{ .Description }}</p>
        {{- if .Link }}
        <a class="item-link" href="{{ .Link }}">{{ .Link }}</a>
        {{- end }}
        <hr>
    </div>
    {{- end }}
{{- end }}
</div>
{{- if .Link }}
<div class="source-link-container">
    <a href="{{ .Link }}">View on Perplexity</a>
</div>
{{- end }}
</body>
</html>
`
