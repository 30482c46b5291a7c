package examtopics

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newbdez33/examtopics-tools/contentstream"
	"github.com/newbdez33/examtopics-tools/questions"
	"github.com/newbdez33/examtopics-tools/text"
)

func testRun(t *testing.T, numbers ...int) *documentRun {
	t.Helper()
	file := &questions.File{}
	for _, n := range numbers {
		file.Questions = append(file.Questions, &questions.Question{Number: n})
	}
	return &documentRun{
		file:     file,
		docName:  "exam",
		imageDir: filepath.Join(t.TempDir(), "images", "exam"),
		ordinals: make(map[int]int),
		updated:  make(map[int]bool),
	}
}

func quietExtractor() *Extractor {
	opts := DefaultOptions()
	opts.Logger = log.New(io.Discard, "", 0)
	return NewExtractorWithOptions(opts)
}

func line(y float64, s string) text.Line {
	return text.Line{Y: y, Text: s}
}

func TestAssemblePageSingleParagraph(t *testing.T) {
	run := testRun(t, 1)
	lines := []text.Line{
		line(700, "Question #1"),
		line(690, "Topic 2"),
		line(680, "What is the capital of X?"),
		line(670, "A. Paris"),
	}

	result := quietExtractor().assemblePage(run, 1, lines, nil)
	if !result.rewrote {
		t.Fatal("expected a content rewrite")
	}

	got := run.file.FindByNumber(1).Content
	want := "<p>What is the capital of X?</p>"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	if !run.updated[1] {
		t.Error("question 1 not recorded as updated")
	}
}

func TestAssemblePageInterleavesImage(t *testing.T) {
	run := testRun(t, 3)
	lines := []text.Line{
		line(710, "Question #3"),
		line(700, "Refer to the exhibit."),
		line(650, "Which option is shown?"),
	}
	images := []contentstream.ExtractedImage{
		{PNG: []byte("png"), Width: 100, Height: 100, X: 50, Y: 680},
	}

	result := quietExtractor().assemblePage(run, 2, lines, images)
	if result.extracted != 1 || result.linked != 1 {
		t.Fatalf("extracted=%d linked=%d, want 1/1", result.extracted, result.linked)
	}

	content := run.file.FindByNumber(3).Content
	want := "<p>Refer to the exhibit.</p>" +
		`<p><img src="images/exam/q3_p2_1.png" alt="question 3 image 1" /></p>` +
		"<p>Which option is shown?</p>"
	if content != want {
		t.Errorf("content = %q\nwant      %q", content, want)
	}

	if _, err := os.Stat(filepath.Join(run.imageDir, "q3_p2_1.png")); err != nil {
		t.Errorf("image file not written: %v", err)
	}
}

func TestAssemblePageNoAnchors(t *testing.T) {
	run := testRun(t, 1)
	images := []contentstream.ExtractedImage{
		{PNG: []byte("png"), Width: 100, Height: 100, Y: 500},
	}

	result := quietExtractor().assemblePage(run, 1, []text.Line{line(700, "Front matter")}, images)
	if result.extracted != 1 {
		t.Errorf("extracted = %d, want 1", result.extracted)
	}
	if result.linked != 0 {
		t.Errorf("linked = %d, want 0", result.linked)
	}
	if result.rewrote {
		t.Error("content rewritten without anchors")
	}
}

func TestAssemblePageUnknownQuestionNumber(t *testing.T) {
	run := testRun(t, 1)
	lines := []text.Line{
		line(700, "Question #99"),
		line(690, "Orphan stem text."),
	}
	images := []contentstream.ExtractedImage{
		{PNG: []byte("png"), Width: 100, Height: 100, Y: 680},
	}

	result := quietExtractor().assemblePage(run, 1, lines, images)
	if result.linked != 0 {
		t.Errorf("linked = %d, want 0 for unknown question", result.linked)
	}
	if result.rewrote {
		t.Error("rewrote content for a question missing from the file")
	}
}

func TestImageOrdinalPersistsAcrossPages(t *testing.T) {
	run := testRun(t, 5)
	e := quietExtractor()
	lines := []text.Line{
		line(700, "Question #5"),
		line(690, "Stem."),
	}
	img := contentstream.ExtractedImage{PNG: []byte("png"), Width: 100, Height: 100, Y: 695}

	e.assemblePage(run, 1, lines, []contentstream.ExtractedImage{img})
	e.assemblePage(run, 2, lines, []contentstream.ExtractedImage{img})

	for _, name := range []string{"q5_p1_1.png", "q5_p2_2.png"} {
		if _, err := os.Stat(filepath.Join(run.imageDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if run.ordinals[5] != 2 {
		t.Errorf("ordinal = %d, want 2", run.ordinals[5])
	}
}

func TestFailedImageWriteKeepsOrdinalContiguous(t *testing.T) {
	run := testRun(t, 7)
	img := contentstream.ExtractedImage{PNG: []byte("png"), Width: 100, Height: 100, Y: 690}

	// A regular file where the image directory should go makes MkdirAll
	// fail, so the first write cannot succeed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	run.imageDir = filepath.Join(blocker, "images")

	if _, err := run.writeImage(7, 1, img); err == nil {
		t.Fatal("writeImage with blocked dir: expected error")
	}
	if run.ordinals[7] != 0 {
		t.Fatalf("ordinal = %d after failed write, want 0", run.ordinals[7])
	}

	run.imageDir = filepath.Join(dir, "images")
	block, err := run.writeImage(7, 1, img)
	if err != nil {
		t.Fatalf("writeImage error: %v", err)
	}
	if block.Path != "images/exam/q7_p1_1.png" {
		t.Errorf("path = %q, want ordinal 1 after recovered write", block.Path)
	}
	if _, err := os.Stat(filepath.Join(run.imageDir, "q7_p1_1.png")); err != nil {
		t.Errorf("image file not written: %v", err)
	}
}

func TestExtractFatalOnInvalidQuestions(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(jsonPath, []byte(`{"items":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := quietExtractor().Extract("missing.pdf", jsonPath); err == nil {
		t.Fatal("Extract() with invalid questions file: expected error")
	}
}

func TestExtractEndToEnd(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeMinimalPDF(t, dir)
	jsonPath := filepath.Join(dir, "questions.json")
	input := `{"questions":[{"questionNumber":1,"content":"","answer":"A"}]}`
	if err := os.WriteFile(jsonPath, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.MinImageWidth = 2
	opts.MinImageHeight = 2
	opts.Logger = log.New(io.Discard, "", 0)

	report, err := NewExtractorWithOptions(opts).Extract(pdfPath, jsonPath)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	// The fixture page paints one 2x2 image but has no text, so the
	// image is extracted and left unlinked.
	if report.ImagesExtracted != 1 {
		t.Errorf("ImagesExtracted = %d, want 1", report.ImagesExtracted)
	}
	if report.ImagesLinked != 0 {
		t.Errorf("ImagesLinked = %d, want 0", report.ImagesLinked)
	}
	if len(report.UpdatedQuestions) != 0 {
		t.Errorf("UpdatedQuestions = %v, want none", report.UpdatedQuestions)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"answer": "A"`) && !strings.Contains(string(data), `"answer":"A"`) {
		t.Errorf("untouched field lost: %s", data)
	}
}

func TestExtractSkipsBrokenPage(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeBrokenSecondPagePDF(t, dir)
	jsonPath := filepath.Join(dir, "questions.json")
	if err := os.WriteFile(jsonPath, []byte(`{"questions":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var logged bytes.Buffer
	opts := DefaultOptions()
	opts.MinImageWidth = 2
	opts.MinImageHeight = 2
	opts.Logger = log.New(&logged, "", 0)

	report, err := NewExtractorWithOptions(opts).Extract(pdfPath, jsonPath)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if report.ImagesExtracted != 1 {
		t.Errorf("ImagesExtracted = %d, want 1 from the healthy page", report.ImagesExtracted)
	}
	if !strings.Contains(logged.String(), "page 2") {
		t.Errorf("broken page not logged: %q", logged.String())
	}
}

// writeBrokenSecondPagePDF builds a two-page PDF where page 1 paints one
// 2x2 image and page 2's Contents reference points at a missing object.
func writeBrokenSecondPagePDF(t *testing.T, dir string) string {
	t.Helper()

	content := []byte("q\n100 0 0 100 50 600 cm\n/Im1 Do\nQ\n")
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}

	objects := [][]byte{
		[]byte("<< /Type /Catalog /Pages 2 0 R >>"),
		[]byte("<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>"),
		[]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Contents 4 0 R /Resources << /XObject << /Im1 6 0 R >> >> >>"),
		pdfStream(fmt.Sprintf("<< /Length %d >>", len(content)), content),
		[]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 9 0 R >>"),
		pdfStream(fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width 2 /Height 2 "+
			"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Length %d >>", len(pixels)), pixels),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// writeMinimalPDF builds a single-page PDF whose content stream paints one
// 2x2 DeviceRGB image XObject, with the cross-reference table computed
// from the actual object offsets.
func writeMinimalPDF(t *testing.T, dir string) string {
	t.Helper()

	content := []byte("q\n100 0 0 100 50 600 cm\n/Im1 Do\nQ\n")
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}

	objects := [][]byte{
		[]byte("<< /Type /Catalog /Pages 2 0 R >>"),
		[]byte("<< /Type /Pages /Kids [3 0 R] /Count 1 >>"),
		[]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Contents 4 0 R /Resources << /XObject << /Im1 5 0 R >> >> >>"),
		pdfStream(fmt.Sprintf("<< /Length %d >>", len(content)), content),
		pdfStream(fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width 2 /Height 2 "+
			"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Length %d >>", len(pixels)), pixels),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	path := filepath.Join(dir, "exam.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func pdfStream(dict string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(dict)
	buf.WriteString("\nstream\n")
	buf.Write(data)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}
