package examtopics

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/newbdez33/examtopics-tools/contentstream"
	"github.com/newbdez33/examtopics-tools/layout"
	"github.com/newbdez33/examtopics-tools/pdfpage"
	"github.com/newbdez33/examtopics-tools/questions"
	"github.com/newbdez33/examtopics-tools/text"
)

// Report summarizes an extraction run.
type Report struct {
	// ImagesExtracted is the number of qualifying images decoded from
	// the document's pages.
	ImagesExtracted int

	// ImagesLinked is the number of images written to disk and linked
	// into a question's content.
	ImagesLinked int

	// UpdatedQuestions lists the question numbers whose content was
	// rewritten, sorted ascending.
	UpdatedQuestions []int
}

// Extractor reconstructs per-question HTML content from a PDF's pages and
// writes it back into the companion questions JSON file.
type Extractor struct {
	options Options
}

// NewExtractor returns an extractor with default options.
func NewExtractor() *Extractor {
	return NewExtractorWithOptions(DefaultOptions())
}

// NewExtractorWithOptions returns an extractor with the given options.
func NewExtractorWithOptions(options Options) *Extractor {
	if options.Logger == nil {
		options.Logger = DefaultOptions().Logger
	}
	return &Extractor{options: options}
}

// Extract processes every page of the PDF at pdfPath, rebuilding the
// content of each question found in the JSON file at jsonPath. Extracted
// images land under images/<pdf base name>/ next to the JSON file. The
// JSON file is rewritten after every page that produced an image, so an
// interrupted run keeps its completed pages.
//
// A structurally invalid questions file aborts the run. A page that fails
// to decode is logged and skipped; the remaining pages still process.
func (e *Extractor) Extract(pdfPath, jsonPath string) (*Report, error) {
	file, err := questions.Load(jsonPath)
	if err != nil {
		return nil, err
	}

	doc, err := pdfpage.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	docName := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outDir := filepath.Dir(jsonPath)

	run := &documentRun{
		file:     file,
		docName:  docName,
		imageDir: filepath.Join(outDir, "images", docName),
		ordinals: make(map[int]int),
		updated:  make(map[int]bool),
	}

	report := &Report{}
	dirty := false
	for page := 1; page <= doc.NumPages(); page++ {
		result, err := e.processPage(doc, page, run)
		if err != nil {
			e.options.Logger.Printf("page %d: %v", page, err)
			continue
		}
		report.ImagesExtracted += result.extracted
		report.ImagesLinked += result.linked
		if result.linked > 0 {
			if err := file.Save(jsonPath); err != nil {
				return report, fmt.Errorf("flush after page %d: %w", page, err)
			}
			dirty = false
		} else if result.rewrote {
			dirty = true
		}
	}
	if dirty {
		if err := file.Save(jsonPath); err != nil {
			return report, fmt.Errorf("final save: %w", err)
		}
	}

	for number := range run.updated {
		report.UpdatedQuestions = append(report.UpdatedQuestions, number)
	}
	sort.Ints(report.UpdatedQuestions)
	return report, nil
}

// documentRun is the state that survives page boundaries: the question
// file, the per-question image ordinal counter, and the updated set.
type documentRun struct {
	file     *questions.File
	docName  string
	imageDir string
	ordinals map[int]int
	updated  map[int]bool
}

// pageResult is what one page contributes back to the document run.
type pageResult struct {
	extracted int
	linked    int
	rewrote   bool
}

// processPage runs the full pipeline for one page. The PDF library panics
// on malformed pages; the recover turns that into the per-page error the
// caller logs.
func (e *Extractor) processPage(doc *pdfpage.Document, pageNum int, run *documentRun) (result pageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during extraction: %v", r)
		}
	}()

	page, err := doc.Page(pageNum)
	if err != nil {
		return result, err
	}

	frags, err := page.Fragments()
	if err != nil {
		return result, err
	}
	lines := text.NewGrouperWithConfig(e.options.lineConfig()).Group(frags)
	images := e.pageImages(page)
	return e.assemblePage(run, pageNum, lines, images), nil
}

// assemblePage binds one page's grouped lines and extracted images to
// question bands and rewrites each band's question content.
func (e *Extractor) assemblePage(run *documentRun, pageNum int, lines []text.Line, images []contentstream.ExtractedImage) pageResult {
	var result pageResult
	result.extracted = len(images)

	anchors := layout.LocateAnchors(lines)
	if len(anchors) == 0 {
		return result
	}

	byAnchor := make(map[int][]contentstream.ExtractedImage)
	for _, a := range layout.AssignRegions(images, anchors) {
		byAnchor[a.Anchor.Number] = append(byAnchor[a.Anchor.Number], a.Image)
	}

	builder := layout.NewParagraphBuilderWithConfig(e.options.paragraphConfig())
	for i, anchor := range anchors {
		end := len(lines)
		if i+1 < len(anchors) {
			end = anchors[i+1].LineIndex
		}

		question := run.file.FindByNumber(anchor.Number)

		var textBlocks []layout.Block
		for _, p := range builder.Build(lines, anchor.LineIndex, end) {
			textBlocks = append(textBlocks, layout.NewTextBlock(p.Y, p.Text))
		}

		var imageBlocks []layout.Block
		for _, img := range byAnchor[anchor.Number] {
			if question == nil {
				continue
			}
			block, err := run.writeImage(anchor.Number, pageNum, img)
			if err != nil {
				e.options.Logger.Printf("page %d: question %d: %v", pageNum, anchor.Number, err)
				continue
			}
			imageBlocks = append(imageBlocks, block)
			result.linked++
		}

		html := layout.RenderHTML(layout.Interleave(textBlocks, imageBlocks))
		if html != "" && question != nil {
			question.Content = html
			run.updated[anchor.Number] = true
			result.rewrote = true
		}
	}
	return result
}

// pageImages interprets the page's content stream, yielding its decoded
// images. Interpretation failures cost only this page's images.
func (e *Extractor) pageImages(page *pdfpage.Page) []contentstream.ExtractedImage {
	data, err := page.ContentStream()
	if err != nil {
		return nil
	}
	interp := contentstream.NewInterpreterWithConfig(page, e.options.interpreterConfig())
	images, err := interp.RunBytes(data)
	if err != nil {
		return nil
	}
	return images
}

// writeImage stores one extracted image under the run's image directory
// and returns the block linking it. The question's ordinal advances only
// once the file is on disk, so a failed write does not leave a gap in the
// numbering.
func (run *documentRun) writeImage(number, pageNum int, img contentstream.ExtractedImage) (layout.Block, error) {
	ordinal := run.ordinals[number] + 1

	name := fmt.Sprintf("q%d_p%d_%d.png", number, pageNum, ordinal)
	if err := os.MkdirAll(run.imageDir, 0o755); err != nil {
		return layout.Block{}, fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(run.imageDir, name), img.PNG, 0o644); err != nil {
		return layout.Block{}, fmt.Errorf("write %s: %w", name, err)
	}
	run.ordinals[number] = ordinal

	rel := path.Join("images", run.docName, name)
	alt := fmt.Sprintf("question %d image %d", number, ordinal)
	return layout.NewImageBlock(img.Y, rel, alt), nil
}
