package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const markdownInputFile = "input.md"

const sampleMarkdown = "# Sample Markdown\n\nThis is **bold** and this is *italic*.\n\n```js\nconsole.log('hello');\n```\n"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type MarkdownRender struct{}

func (MarkdownRender) Kind() Kind {
	return KindMarkdownRender
}

func (m MarkdownRender) GenerateRound1(in Input) (entities.FileSet, error) {
	return m.generate(in, nil, 1)
}

func (m MarkdownRender) GenerateRound2(in Input, prior entities.FileSet) (entities.FileSet, error) {
	return m.generate(in, prior, 2)
}

func (m MarkdownRender) generate(in Input, prior entities.FileSet, round int) (entities.FileSet, error) {
	source, origin := markdownSource(in.Attachments, prior)

	// Served pre-rendered so the page works before marked.js loads.
	var rendered bytes.Buffer
	if err := markdown.Convert(source, &rendered); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", markdownInputFile, err)
	}

	page, err := render(markdownPage, struct {
		Rendered  template.HTML
		Revision  bool
		Origin    string
		WordCount int
	}{
		Rendered:  template.HTML(rendered.String()),
		Revision:  round > 1,
		Origin:    origin,
		WordCount: len(strings.Fields(string(source))),
	})
	if err != nil {
		return nil, err
	}

	usage := "The page converts input.md to HTML with marked and highlights code blocks with highlight.js."
	if round > 1 {
		usage += " The source label and word count are shown above the output."
	}

	return entities.FileSet{
		"index.html":      page,
		markdownInputFile: source,
		"README.md": readme{
			Title: "Markdown to HTML",
			Brief: in.Brief,
			Round: round,
			Setup: []string{
				"Clone this repository",
				"Open index.html in a web browser",
				"No additional setup required, marked and highlight.js are loaded from a CDN",
			},
			Usage:  usage,
			Checks: in.Checks,
		}.Bytes(),
	}, nil
}

func markdownSource(attachments map[string][]byte, prior entities.FileSet) ([]byte, string) {
	if data, ok := attachments[markdownInputFile]; ok {
		return data, "attachment"
	}
	names := make([]string, 0, len(attachments))
	for name := range attachments {
		if strings.HasSuffix(strings.ToLower(name), ".md") {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		return attachments[names[0]], "attachment"
	}
	if prior.Has(markdownInputFile) {
		return prior[markdownInputFile], "previous round"
	}
	return []byte(sampleMarkdown), "sample"
}

var markdownPage = template.Must(template.New("markdown-index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Markdown to HTML Converter</title>
    <script src="https://cdn.jsdelivr.net/npm/marked/marked.min.js"></script>
    <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.7.0/styles/github.min.css">
    <script src="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.7.0/highlight.min.js"></script>
</head>
<body>
    <div class="container" style="max-width: 800px; margin: 0 auto; padding: 20px;">
        <h1>Markdown Converter</h1>
{{- if .Revision}}
        <p>Source: <span id="markdown-source-label">{{.Origin}}</span> &middot; Words: <span id="markdown-word-count">{{.WordCount}}</span></p>
{{- end}}
        <div id="markdown-output" style="border: 1px solid #ccc; padding: 20px; border-radius: 5px;">{{.Rendered}}</div>
    </div>
    <script>
        fetch('input.md')
            .then(function (response) { return response.text(); })
            .then(function (text) {
                if (window.marked) {
                    document.getElementById('markdown-output').innerHTML = marked.parse(text);
                }
                if (window.hljs) {
                    document.querySelectorAll('pre code').forEach(function (block) { hljs.highlightElement(block); });
                }
            })
            .catch(function (error) { console.error('Error loading input.md:', error); });
    </script>
</body>
</html>
`))
