package document

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tbcolby/settlement-game/internal/model"
)

type Format string

const (
	FormatText         Format = "text"
	FormatMarkdown     Format = "markdown"
	FormatHTML         Format = "html"
	FormatMarkdownHTML Format = "markdown-html"
)

var ErrUnknownFormat = errors.New("unknown document format")

// ParseFormat maps a format name to a Format. The empty name is text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, FormatHTML, FormatMarkdownHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ContentType returns the media type of the rendered format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML, FormatMarkdownHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Export renders msa in the requested format.
func Export(msa model.MaritalSettlementAgreement, format Format) (string, error) {
	switch format {
	case FormatText, "":
		return Generate(msa), nil
	case FormatMarkdown:
		return Markdown(msa), nil
	case FormatHTML:
		return HTML(msa), nil
	case FormatMarkdownHTML:
		return MarkdownHTML(msa)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var (
	headingLine  = regexp.MustCompile(`(?m)^([A-Z][A-Z\s]+)$`)
	numberedItem = regexp.MustCompile(`(?m)^    (\d+\. )`)
	htmlEscaper  = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	md           = goldmark.New()
)

// Markdown turns all-caps lines into level-two headings and bolds the
// numbers of numbered provisions.
func Markdown(msa model.MaritalSettlementAgreement) string {
	out := headingLine.ReplaceAllString(Generate(msa), "## ${1}")
	return numberedItem.ReplaceAllString(out, "\n**${1}**")
}

// HTML wraps the plain text agreement in a printable page.
func HTML(msa model.MaritalSettlementAgreement) string {
	body := "  <pre>" + htmlEscaper.Replace(Generate(msa)) + "</pre>"
	return page(msa, body)
}

// MarkdownHTML renders the markdown export as HTML inside the same page.
func MarkdownHTML(msa model.MaritalSettlementAgreement) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(msa)), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return page(msa, strings.TrimRight(buf.String(), "\n")), nil
}

func page(msa model.MaritalSettlementAgreement, body string) string {
	return fmt.Sprintf(pageShell, msa.PartyAName, msa.PartyBName, body)
}

const pageShell = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Marital Settlement Agreement - %s vs %s</title>
  <style>
    body {
      font-family: 'Times New Roman', serif;
      font-size: 12pt;
      line-height: 1.8;
      max-width: 8.5in;
      margin: 1in auto;
      padding: 0 0.5in;
    }
    h1, h2 {
      font-size: 12pt;
      font-weight: bold;
      text-align: center;
      margin: 1em 0;
    }
    p {
      text-align: justify;
      text-indent: 0.5in;
      margin: 0.5em 0;
    }
    .signature-block {
      margin-top: 2in;
      page-break-inside: avoid;
    }
    .signature-line {
      border-top: 1px solid black;
      width: 3in;
      margin: 1em 0 0.5em 0;
    }
    @media print {
      body {
        margin: 0.5in;
      }
    }
  </style>
</head>
<body>
%s
</body>
</html>`
