package scraper

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/titanicprep/internal/model"
)

// ErrNoTable is returned when a page contains no <table> element.
var ErrNoTable = errors.New("no table found")

// maxColspan caps the colspan attribute; larger values are treated as 1.
const maxColspan = 100

// ParseFirstTable parses HTML content and returns the first <table> as a row-set.
//
// The header is the first row made only of <th> cells, provided it comes
// before any data row. Without such a row the columns are named "0", "1", ...
// Cells with colspan are repeated, rows wider than the header extend it with
// "Unnamed: <n>" columns, and rows without cells are skipped.
func ParseFirstTable(content io.Reader) (*model.Table, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	tableNode := findFirst(doc, "table")
	if tableNode == nil {
		return nil, ErrNoTable
	}

	var header []string
	rows := make([][]string, 0)
	for _, tr := range collectRows(tableNode) {
		cells, allHeader := rowCells(tr)
		if len(cells) == 0 {
			continue
		}
		if header == nil && allHeader && len(rows) == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if header == nil {
		header = make([]string, 0, width)
		for i := 0; i < width; i++ {
			header = append(header, strconv.Itoa(i))
		}
	}
	for i := len(header); i < width; i++ {
		header = append(header, "Unnamed: "+strconv.Itoa(i))
	}

	t := model.NewTable(header...)
	for _, r := range rows {
		if err := t.AppendRow(r...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// findFirst returns the first element with the given tag in document order.
func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectRows returns the <tr> elements of table, skipping rows of nested tables.
func collectRows(table *html.Node) []*html.Node {
	rows := make([]*html.Node, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				rows = append(rows, c)
			case "table":
				// nested table
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

// rowCells returns the text of each cell of a row and whether every cell is a <th>.
func rowCells(tr *html.Node) ([]string, bool) {
	cells := make([]string, 0)
	allHeader := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data == "td" {
			allHeader = false
		}
		text := cellText(c)
		for i := 0; i < colspan(c); i++ {
			cells = append(cells, text)
		}
	}
	return cells, allHeader && len(cells) > 0
}

// cellText returns the whitespace-collapsed text content of a node.
func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// colspan returns the colspan attribute of a cell, defaulting to 1.
func colspan(n *html.Node) int {
	v := getAttr(n, "colspan")
	if v == "" {
		return 1
	}
	span, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || span < 1 || span > maxColspan {
		return 1
	}
	return span
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
