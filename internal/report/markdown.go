package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

// Markdown converts chat narrative markdown to HTML. Raw HTML in the input
// is not passed through.
func Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// MarkdownBlock renders text as HTML inside a templ page.
func MarkdownBlock(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := Markdown(text)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}

// Stylesheet is shared by the report page and the web chat.
const Stylesheet = `
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; color: #1f2933; }
h1 { font-size: 1.6rem; }
.badge { display: inline-block; padding: .2rem .6rem; border-radius: .4rem; color: #fff; font-weight: 600; }
.level-LOW { background: #2f9e44; }
.level-MODERATE { background: #f08c00; }
.level-HIGH { background: #e03131; }
.bar { background: #e9ecef; border-radius: .4rem; height: .8rem; margin: .6rem 0 1.2rem; }
.bar > span { display: block; height: 100%; border-radius: .4rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .3rem .5rem; border-bottom: 1px solid #dee2e6; }
.status-below, .status-above { color: #e03131; font-weight: 600; }
.disclaimer { margin-top: 2rem; font-size: .9rem; color: #52606d; }
`

// StyleTag returns a style element holding the shared stylesheet followed
// by extra rules.
func StyleTag(extra ...string) templ.Component {
	var b bytes.Buffer
	b.WriteString("<style>")
	b.WriteString(Stylesheet)
	for _, block := range extra {
		b.WriteString(block)
	}
	b.WriteString("</style>")
	return templ.Raw(b.String())
}

func barStyle(percent int) templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("width: %d%%", min(max(percent, 0), 100))}
}
