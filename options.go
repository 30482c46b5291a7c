package examtopics

import (
	"log"
	"os"

	"github.com/newbdez33/examtopics-tools/contentstream"
	"github.com/newbdez33/examtopics-tools/layout"
	"github.com/newbdez33/examtopics-tools/text"
)

// Options configures the extraction pipeline. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	// MinImageWidth and MinImageHeight drop images smaller than this in
	// either dimension as decorative noise. Default: 80x80.
	MinImageWidth  int
	MinImageHeight int

	// LineBucketSize is the vertical quantization bucket for grouping
	// text fragments into lines. Default: 2.
	LineBucketSize float64

	// ParagraphGap is the maximum vertical gap between consecutive lines
	// of one paragraph. Default: 18.
	ParagraphGap float64

	// Logger receives per-page progress and failure messages. Defaults
	// to a stderr logger.
	Logger *log.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MinImageWidth:  80,
		MinImageHeight: 80,
		LineBucketSize: 2,
		ParagraphGap:   18,
		Logger:         log.New(os.Stderr, "examtopics: ", log.LstdFlags),
	}
}

func (o Options) interpreterConfig() contentstream.InterpreterConfig {
	return contentstream.InterpreterConfig{
		MinWidth:  o.MinImageWidth,
		MinHeight: o.MinImageHeight,
	}
}

func (o Options) lineConfig() text.Config {
	return text.Config{BucketSize: o.LineBucketSize}
}

func (o Options) paragraphConfig() layout.ParagraphConfig {
	return layout.ParagraphConfig{GapThreshold: o.ParagraphGap}
}
