// Package examtopics reconstructs exam question content from PDF exam
// dumps. It interprets each page's content stream to locate embedded
// images, groups positioned text into lines and paragraphs, detects
// "Question #N" anchors that partition the page into per-question bands,
// and interleaves text and image blocks in reading order into HTML that
// replaces the question's content in the companion JSON file.
//
// Basic usage:
//
//	extractor := examtopics.NewExtractor()
//	report, err := extractor.Extract("exam.pdf", "questions.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("extracted %d, linked %d\n", report.ImagesExtracted, report.ImagesLinked)
//
// Extracted images are written under images/<pdf base name>/ next to the
// JSON file, named q<N>_p<page>_<ordinal>.png. Heuristic thresholds (line
// bucketing, paragraph gap, minimum image size) are configurable through
// Options.
package examtopics
