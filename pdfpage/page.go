// Package pdfpage adapts github.com/ledongthuc/pdf to the page abstraction
// the extraction pipeline consumes: positioned text fragments, raw content
// stream bytes, and named image XObject resolution. Container parsing,
// cross-reference handling and stream decompression stay inside the
// library; this package only maps its object model.
//
// The underlying library panics on malformed documents. Methods that walk
// library values recover such panics into errors, so callers see ordinary
// error returns for broken pages and unresolvable objects.
package pdfpage

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/newbdez33/examtopics-tools/imaging"
	"github.com/newbdez33/examtopics-tools/text"
)

// Document is an open PDF file.
type Document struct {
	f *os.File
	r *pdf.Reader
}

// Open opens a PDF document for reading.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfpage: open %s: %w", path, err)
	}
	return &Document{f: f, r: r}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.f.Close()
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.r.NumPage()
}

// Page returns the 1-based page, or an error when the page is absent.
func (d *Document) Page(num int) (*Page, error) {
	p := d.r.Page(num)
	if p.V.IsNull() {
		return nil, fmt.Errorf("pdfpage: page %d not found", num)
	}
	return &Page{page: p}, nil
}

// Page is a single page of an open document.
type Page struct {
	page pdf.Page
}

// Fragments extracts the page's positioned text runs.
func (p *Page) Fragments() (frags []text.Fragment, err error) {
	defer recoverTo(&err, "text extraction")

	content := p.page.Content()
	frags = make([]text.Fragment, 0, len(content.Text))
	for _, t := range content.Text {
		frags = append(frags, text.Fragment{Text: t.S, X: t.X, Y: t.Y})
	}
	return frags, nil
}

// ContentStream returns the page's decoded content stream bytes. Pages
// whose Contents entry is an array of streams are concatenated in order,
// separated by newlines as the PDF model requires.
func (p *Page) ContentStream() (data []byte, err error) {
	defer recoverTo(&err, "content stream")

	contents := p.page.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		return readStream(contents)
	case pdf.Array:
		var joined []byte
		for i := 0; i < contents.Len(); i++ {
			part, err := readStream(contents.Index(i))
			if err != nil {
				return nil, err
			}
			if len(joined) > 0 {
				joined = append(joined, '\n')
			}
			joined = append(joined, part...)
		}
		return joined, nil
	default:
		return nil, fmt.Errorf("pdfpage: page has no content stream")
	}
}

// ResolveXObject looks up a named image XObject in the page resources and
// returns its decoded raster. Non-image XObjects and unresolvable names
// return an error; the caller skips that paint operation.
func (p *Page) ResolveXObject(name string) (raster *imaging.Raster, err error) {
	defer recoverTo(&err, "xobject "+name)

	obj := p.page.Resources().Key("XObject").Key(name)
	if obj.Kind() != pdf.Stream {
		return nil, fmt.Errorf("pdfpage: xobject %q is not a stream", name)
	}
	if subtype := obj.Key("Subtype"); subtype.Kind() == pdf.Name && subtype.Name() != "Image" {
		return nil, fmt.Errorf("pdfpage: xobject %q is not an image", name)
	}

	width := int(obj.Key("Width").Int64())
	height := int(obj.Key("Height").Int64())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pdfpage: xobject %q has invalid dimensions", name)
	}

	raster = &imaging.Raster{
		Width:            width,
		Height:           height,
		ColorSpace:       colorSpaceName(obj.Key("ColorSpace")),
		BitsPerComponent: 8,
	}
	if bpc := obj.Key("BitsPerComponent"); bpc.Kind() == pdf.Integer {
		raster.BitsPerComponent = int(bpc.Int64())
	}

	switch filterName(obj.Key("Filter")) {
	case "DCTDecode":
		raster.Filter = "DCTDecode"
	case "CCITTFaxDecode":
		raster.Filter = "CCITTFaxDecode"
		raster.CCITT = ccittParams(obj.Key("DecodeParms"), width, height)
	}

	data, err := readStream(obj)
	if err != nil {
		return nil, err
	}
	raster.Data = data
	return raster, nil
}

// readStream drains a stream value through the library's filter chain.
func readStream(v pdf.Value) ([]byte, error) {
	r := v.Reader()
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pdfpage: read stream: %w", err)
	}
	return data, nil
}

// colorSpaceName reduces a color space entry to a device name. Array
// color spaces resolve through their base (Indexed) or report their
// family name.
func colorSpaceName(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		if v.Len() == 0 {
			return "DeviceGray"
		}
		family := v.Index(0).Name()
		if family == "Indexed" && v.Len() > 1 {
			return colorSpaceName(v.Index(1))
		}
		return family
	default:
		return "DeviceGray"
	}
}

// filterName returns the image-compression filter applied to a stream:
// the last entry of a filter chain, since transport filters are undone by
// the library's reader.
func filterName(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		if v.Len() == 0 {
			return ""
		}
		return v.Index(v.Len() - 1).Name()
	default:
		return ""
	}
}

// ccittParams extracts CCITT decode parameters, defaulting the dimensions
// to the image's own.
func ccittParams(v pdf.Value, width, height int) imaging.CCITTParams {
	params := imaging.CCITTParams{Columns: width, Rows: height}
	if v.Kind() != pdf.Dict {
		return params
	}
	if k := v.Key("K"); k.Kind() == pdf.Integer {
		params.K = int(k.Int64())
	}
	if cols := v.Key("Columns"); cols.Kind() == pdf.Integer {
		params.Columns = int(cols.Int64())
	}
	if rows := v.Key("Rows"); rows.Kind() == pdf.Integer {
		params.Rows = int(rows.Int64())
	}
	if black := v.Key("BlackIs1"); black.Kind() == pdf.Bool {
		params.BlackIs1 = black.Bool()
	}
	return params
}

// recoverTo converts a library panic into an error.
func recoverTo(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdfpage: %s failed: %v", op, r)
	}
}
