package tabular

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/transform"

	"mdsections/internal"
)

var htmlSpace = regexp.MustCompile(`[ \t\r\n\f]+`)

// readHTML reads the opts.TableIndex-th <table>. Its first row is the header.
// Source whitespace collapses as a browser would render it; only <br> inside
// a cell becomes a line break, so Markdown bodies keep their lines.
func readHTML(r io.Reader, opts Options) (*Grid, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(transform.NewReader(r, dec))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", internal.ErrSourceFormat, err)
	}

	if opts.TableIndex < 0 {
		return nil, fmt.Errorf("invalid html table index %d", opts.TableIndex)
	}
	table := doc.Find("table").Eq(opts.TableIndex)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: html has no table at index %d", internal.ErrSourceFormat, opts.TableIndex)
	}
	for _, n := range table.Nodes {
		collapseWhitespace(n)
	}
	table.Find("br").ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})

	records := [][]string{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cellText(cell.Text()))
		})
		records = append(records, cells)
	})

	header, rows, ok := splitHeader(records)
	if !ok {
		return nil, fmt.Errorf("%w: html table has no header row", internal.ErrSourceFormat)
	}
	return NewGrid(header, rows), nil
}

func collapseWhitespace(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = htmlSpace.ReplaceAllString(n.Data, " ")
		return
	}
	if n.Type == html.ElementNode && n.Data == "pre" {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collapseWhitespace(c)
	}
}

// cellText trims every line of a cell so headings after a <br> start at
// column 0.
func cellText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
