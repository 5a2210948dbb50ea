// Package parser разбирает страницы и CSV-файлы портала выборов.
package parser

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"golang.org/x/net/html"
)

// ExtractLinks возвращает все href ссылок <a> в порядке появления,
// без повторов, разрешённые относительно base.
func ExtractLinks(r io.Reader, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	seen := make(map[string]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				abs := baseURL.ResolveReference(ref).String()
				if _, ok := seen[abs]; !ok {
					seen[abs] = struct{}{}
					links = append(links, abs)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// ResultFileLinks группирует ссылки на CSV по слагу юрисдикции в имени файла.
// Выбирается самый длинный подходящий слаг, чтобы файлы Baltimore_City
// не попали к Baltimore.
func ResultFileLinks(links []string) map[string][]string {
	slugs := jurisdiction.List()
	sort.Slice(slugs, func(i, j int) bool { return len(slugs[i]) > len(slugs[j]) })

	out := make(map[string][]string)
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		name := u.Path[strings.LastIndex(u.Path, "/")+1:]
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		for _, slug := range slugs {
			if strings.HasPrefix(name, slug+"_") {
				out[slug] = append(out[slug], link)
				break
			}
		}
	}
	return out
}
