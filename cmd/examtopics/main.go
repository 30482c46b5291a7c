// Command examtopics extracts exam question content from PDF dumps and
// manages the companion question JSON files.
//
// Usage:
//
//	examtopics images -pdf exam.pdf -json questions.json
//	examtopics merge -dir pages/ -out merged.json
//	examtopics fetch -template request.json -out pages/ -pages 10
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	examtopics "github.com/newbdez33/examtopics-tools"
	"github.com/newbdez33/examtopics-tools/fetch"
	"github.com/newbdez33/examtopics-tools/questions"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("examtopics: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "images":
		err = runImages(os.Args[2:])
	case "merge":
		err = runMerge(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: examtopics <command> [flags]

commands:
  images   extract images from a PDF and rebuild question content
  merge    merge per-page question JSON files into one deduplicated file
  fetch    replay a captured request template and store per-page JSON`)
}

func runImages(args []string) error {
	fs := flag.NewFlagSet("images", flag.ExitOnError)
	pdfPath := fs.String("pdf", "", "path to the exam PDF")
	jsonPath := fs.String("json", "", "path to the questions JSON file")
	minWidth := fs.Int("min-width", 80, "minimum image width in pixels")
	minHeight := fs.Int("min-height", 80, "minimum image height in pixels")
	fs.Parse(args)

	if *pdfPath == "" || *jsonPath == "" {
		return fmt.Errorf("images: -pdf and -json are required")
	}

	opts := examtopics.DefaultOptions()
	opts.MinImageWidth = *minWidth
	opts.MinImageHeight = *minHeight

	report, err := examtopics.NewExtractorWithOptions(opts).Extract(*pdfPath, *jsonPath)
	if err != nil {
		return err
	}

	fmt.Printf("images extracted: %d\n", report.ImagesExtracted)
	fmt.Printf("images linked:    %d\n", report.ImagesLinked)
	fmt.Printf("updated questions: %v\n", report.UpdatedQuestions)
	return nil
}

func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	dir := fs.String("dir", "", "directory of per-page question JSON files")
	out := fs.String("out", "", "path of the merged output file")
	fs.Parse(args)

	if *dir == "" || *out == "" {
		return fmt.Errorf("merge: -dir and -out are required")
	}

	merged, err := questions.MergeDir(*dir)
	if err != nil {
		return err
	}
	if err := merged.Save(*out); err != nil {
		return err
	}

	fmt.Printf("merged %d questions into %s\n", len(merged.Questions), *out)
	return nil
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	templatePath := fs.String("template", "", "path to the captured request template JSON")
	out := fs.String("out", "", "output directory for per-page JSON files")
	pages := fs.Int("pages", 1, "number of pages to fetch")
	doc := fs.String("doc", "", "document name for localized image paths (default: template base name)")
	fs.Parse(args)

	if *templatePath == "" || *out == "" {
		return fmt.Errorf("fetch: -template and -out are required")
	}
	if *doc == "" {
		base := filepath.Base(*templatePath)
		*doc = strings.TrimSuffix(base, filepath.Ext(base))
	}

	tmpl, err := fetch.LoadTemplate(*templatePath)
	if err != nil {
		return err
	}

	client := fetch.NewClient(tmpl)
	n, err := client.FetchPages(context.Background(), *out, *pages)
	if n > 0 {
		fmt.Printf("fetched %d pages into %s\n", n, *out)
	}
	if err != nil {
		return err
	}

	localized := 0
	for page := 1; page <= n; page++ {
		name := filepath.Join(*out, fmt.Sprintf("page_%d.json", page))
		ln, err := fetch.LocalizeQuestions(client.HTTP, name, *doc, *out)
		if err != nil {
			log.Printf("localize %s: %v", name, err)
			continue
		}
		localized += ln
	}
	fmt.Printf("localized %d images\n", localized)
	return nil
}
