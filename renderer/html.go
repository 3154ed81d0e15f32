package renderer

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md converts GitHub flavored markdown, raw HTML in user text is omitted.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 70em; margin: 2em auto; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: .3em .6em; }
td[style*="right"] { font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML converts a markdown report into a standalone HTML page.
func HTML(w io.Writer, title, markdown string) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	_, err := fmt.Fprintf(w, page, html.EscapeString(title), body.String())
	return err
}
