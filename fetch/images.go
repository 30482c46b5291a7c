package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/newbdez33/examtopics-tools/questions"
)

// LocalizeQuestions rewrites every question's content in the JSON file at
// path, downloading its remote images under <baseDir>/images/<doc>/. A
// question whose content fails to parse keeps its original content. The
// file is rewritten only when at least one image was localized. Returns
// the number of images localized.
func LocalizeQuestions(client *http.Client, path, doc, baseDir string) (int, error) {
	file, err := questions.Load(path)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, q := range file.Questions {
		rewritten, n, err := LocalizeImages(client, q.Content, doc, baseDir)
		if err != nil || n == 0 {
			continue
		}
		q.Content = rewritten
		total += n
	}

	if total > 0 {
		if err := file.Save(path); err != nil {
			return total, err
		}
	}
	return total, nil
}

// LocalizeImages downloads every remote <img src> in the HTML content,
// saves the files under <baseDir>/images/<doc>/, and returns the content
// with the src attributes rewritten to the local relative paths. Images
// that fail to download keep their original src. The second return value
// is the number of images localized.
func LocalizeImages(client *http.Client, content, doc, baseDir string) (string, int, error) {
	if !strings.Contains(content, "<img") {
		return content, 0, nil
	}

	nodes, err := parseFragment(content)
	if err != nil {
		return content, 0, fmt.Errorf("fetch: parse content html: %w", err)
	}

	imageDir := filepath.Join(baseDir, "images", doc)
	localized := 0
	for _, node := range nodes {
		localized += rewriteImages(client, node, doc, imageDir)
	}

	var sb strings.Builder
	for _, node := range nodes {
		if err := html.Render(&sb, node); err != nil {
			return content, localized, fmt.Errorf("fetch: render content html: %w", err)
		}
	}
	return sb.String(), localized, nil
}

// parseFragment parses content as body-context HTML, so bare <p> and <img>
// sequences survive without document wrapping.
func parseFragment(content string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	return html.ParseFragment(strings.NewReader(content), body)
}

func rewriteImages(client *http.Client, node *html.Node, doc, imageDir string) int {
	localized := 0
	if node.Type == html.ElementNode && node.Data == "img" {
		for i, attr := range node.Attr {
			if attr.Key != "src" || !isRemote(attr.Val) {
				continue
			}
			local, err := downloadImage(client, attr.Val, imageDir)
			if err != nil {
				continue
			}
			node.Attr[i].Val = path.Join("images", doc, local)
			localized++
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		localized += rewriteImages(client, child, doc, imageDir)
	}
	return localized
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// downloadImage fetches the remote image and stores it under dir, named
// after the last URL path segment. It returns the stored file name.
func downloadImage(client *http.Client, src, dir string) (string, error) {
	parsed, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("fetch: parse image url: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("fetch: image url %s has no file name", src)
	}

	resp, err := client.Get(src)
	if err != nil {
		return "", fmt.Errorf("fetch: download %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: download %s: unexpected status %s", src, resp.Status)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: create image dir: %w", err)
	}
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("fetch: create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("fetch: save %s: %w", name, err)
	}
	return name, nil
}
