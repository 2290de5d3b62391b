package scraper

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/tilevision/tilevision/internal/tiles"
)

// parseProducts extracts catalog entries from a listing page. The selectors
// mirror the catalog site's product-card markup.
func parseProducts(doc *html.Node, base *url.URL) []tiles.Tile {
	var entries []tiles.Tile
	for _, card := range findAllByClass(doc, "sp-show-product-vertical") {
		entry := tiles.Tile{
			Title:        textOfClass(card, "sp-card-product__title"),
			RegularPrice: textOfClass(card, "sp-card-product__value_regular"),
			SalePrice:    textOfClass(card, "sp-card-product__value_sale"),
			InStock:      !hasClass(card, "product-out-of-stock"),
			ScrapedAt:    time.Now().UTC().Format(time.RFC1123),
		}

		if img := firstByClass(card, "sp-card-product__img"); img != nil {
			if src := attr(img, "src"); src != "" {
				entry.ImageURLs = []string{resolve(base, src)}
			}
		}
		if link := firstByTag(card, "a"); link != nil {
			if href := attr(link, "href"); href != "" {
				entry.ProductURL = resolve(base, href)
			}
		}
		for _, label := range findAllByClass(card, "sp-product-label") {
			if text := strings.TrimSpace(textContent(label)); text != "" {
				entry.Labels = append(entry.Labels, text)
			}
		}

		if entry.Title != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// nextPageURL returns the pagination link, or "" on the last page.
func nextPageURL(doc *html.Node, base *url.URL) string {
	for _, link := range findAllByClass(doc, "pagination__next") {
		if link.Data == "a" {
			if href := attr(link, "href"); href != "" {
				return resolve(base, href)
			}
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func findAllByClass(root *html.Node, class string) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n != root && hasClass(n, class) {
			found = append(found, n)
		}
	})
	return found
}

func firstByClass(root *html.Node, class string) *html.Node {
	all := findAllByClass(root, class)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func firstByTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
	})
	return b.String()
}

func textOfClass(root *html.Node, class string) string {
	n := firstByClass(root, class)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(textContent(n))
}
