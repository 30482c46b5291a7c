package contentstream

import (
	"github.com/newbdez33/examtopics-tools/graphicsstate"
	"github.com/newbdez33/examtopics-tools/imaging"
	"github.com/newbdez33/examtopics-tools/model"
)

// ExtractedImage is an image found during content stream interpretation,
// converted to PNG and positioned at the page-space origin of the transform
// that was active when it was painted.
type ExtractedImage struct {
	PNG    []byte
	Width  int
	Height int
	X, Y   float64
}

// XObjectResolver resolves a named image XObject from the page's resource
// tables into a decoded raster. Returning an error skips that paint
// operation without failing interpretation.
type XObjectResolver interface {
	ResolveXObject(name string) (*imaging.Raster, error)
}

// InterpreterConfig holds configuration for image extraction.
type InterpreterConfig struct {
	// MinWidth is the minimum pixel width for an image to be kept.
	// Smaller images are decorative noise. Default: 80.
	MinWidth int

	// MinHeight is the minimum pixel height for an image to be kept.
	// Default: 80.
	MinHeight int
}

// DefaultInterpreterConfig returns the default extraction configuration.
func DefaultInterpreterConfig() InterpreterConfig {
	return InterpreterConfig{
		MinWidth:  80,
		MinHeight: 80,
	}
}

// Interpreter walks a page's operations, tracking the current transform
// through the save/restore stack, and collects embedded images.
type Interpreter struct {
	gs       *graphicsstate.GraphicsState
	resolver XObjectResolver
	config   InterpreterConfig
	images   []ExtractedImage
}

// NewInterpreter creates an interpreter with default configuration.
// resolver may be nil, in which case named image paints are skipped.
func NewInterpreter(resolver XObjectResolver) *Interpreter {
	return NewInterpreterWithConfig(resolver, DefaultInterpreterConfig())
}

// NewInterpreterWithConfig creates an interpreter with custom configuration.
func NewInterpreterWithConfig(resolver XObjectResolver, config InterpreterConfig) *Interpreter {
	return &Interpreter{
		gs:       graphicsstate.NewGraphicsState(),
		resolver: resolver,
		config:   config,
	}
}

// Run interprets the operations and returns every qualifying image in
// paint order. Operators other than q, Q, cm, Do and BI are ignored.
func (in *Interpreter) Run(ops []Operation) []ExtractedImage {
	for _, op := range ops {
		in.processOperation(op)
	}
	return in.images
}

// RunBytes parses raw content stream data and interprets it.
func (in *Interpreter) RunBytes(data []byte) ([]ExtractedImage, error) {
	ops, err := NewParser(data).Parse()
	if err != nil {
		return nil, err
	}
	return in.Run(ops), nil
}

func (in *Interpreter) processOperation(op Operation) {
	switch op.Operator {
	case "q":
		in.gs.Save()
	case "Q":
		in.gs.Restore()
	case "cm":
		if m, ok := operandsToMatrix(op.Operands); ok {
			in.gs.Concat(m)
		}
	case "Do":
		in.paintXObject(op)
	case "BI":
		in.paintInlineImage(op)
	}
}

// paintXObject handles a named XObject paint. Resolution failures are
// non-fatal: the paint is skipped and interpretation continues.
func (in *Interpreter) paintXObject(op Operation) {
	if in.resolver == nil || len(op.Operands) != 1 {
		return
	}
	name, ok := op.Operands[0].(Name)
	if !ok {
		return
	}

	raster, err := in.resolver.ResolveXObject(string(name))
	if err != nil || raster == nil {
		return
	}
	in.recordImage(raster)
}

// paintInlineImage handles a BI/ID/EI sequence. The parameter dictionary
// uses the abbreviated inline image keys alongside their full forms.
func (in *Interpreter) paintInlineImage(op Operation) {
	if len(op.Operands) != 1 {
		return
	}
	params, ok := op.Operands[0].(Dict)
	if !ok {
		return
	}

	width, wok := ToInt(dictValue(params, "Width", "W"))
	height, hok := ToInt(dictValue(params, "Height", "H"))
	if !wok || !hok {
		return
	}

	raster := &imaging.Raster{
		Data:             op.InlineData,
		Width:            width,
		Height:           height,
		ColorSpace:       inlineColorSpace(dictValue(params, "ColorSpace", "CS")),
		BitsPerComponent: 8,
	}
	if bpc, ok := ToInt(dictValue(params, "BitsPerComponent", "BPC")); ok {
		raster.BitsPerComponent = bpc
	}

	// Walk the filter chain. Transport filters are unwrapped here;
	// image-compression filters are left for the raster to decode.
	for _, filter := range inlineFilters(dictValue(params, "Filter", "F")) {
		switch filter {
		case "ASCIIHexDecode", "AHx":
			data, err := imaging.ASCIIHexDecode(raster.Data)
			if err != nil {
				return
			}
			raster.Data = data
		case "FlateDecode", "Fl":
			data, err := imaging.FlateDecode(raster.Data)
			if err != nil {
				return
			}
			raster.Data = data
		case "DCTDecode", "DCT":
			raster.Filter = "DCTDecode"
		case "CCITTFaxDecode", "CCF":
			raster.Filter = "CCITTFaxDecode"
			raster.CCITT = inlineCCITTParams(dictValue(params, "DecodeParms", "DP"), width, height)
		default:
			// Unsupported filter, drop the image.
			return
		}
	}

	in.recordImage(raster)
}

// recordImage applies the minimum dimension policy, converts the raster to
// PNG and records it at the current transform's translation. Rasters that
// fail conversion are dropped.
func (in *Interpreter) recordImage(raster *imaging.Raster) {
	if raster.Width < in.config.MinWidth || raster.Height < in.config.MinHeight {
		return
	}

	png, err := raster.PNG()
	if err != nil {
		return
	}

	origin := in.gs.Origin()
	in.images = append(in.images, ExtractedImage{
		PNG:    png,
		Width:  raster.Width,
		Height: raster.Height,
		X:      origin.X,
		Y:      origin.Y,
	})
}

func operandsToMatrix(operands []Object) (m model.Matrix, ok bool) {
	if len(operands) != 6 {
		return m, false
	}
	for i, op := range operands {
		v, isNum := ToFloat(op)
		if !isNum {
			return m, false
		}
		m[i] = v
	}
	return m, true
}

// dictValue looks up a dictionary entry by its full key or its inline
// image abbreviation.
func dictValue(d Dict, full, abbrev string) Object {
	if v := d.Get(full); v != nil {
		return v
	}
	return d.Get(abbrev)
}

// inlineColorSpace maps inline color space names (abbreviated or full) to
// the device color space names the raster conversion understands.
func inlineColorSpace(obj Object) string {
	name, ok := obj.(Name)
	if !ok {
		return "DeviceGray"
	}
	switch string(name) {
	case "RGB", "DeviceRGB":
		return "DeviceRGB"
	case "CMYK", "DeviceCMYK":
		return "DeviceCMYK"
	case "G", "DeviceGray":
		return "DeviceGray"
	default:
		return string(name)
	}
}

// inlineFilters normalizes the Filter entry to a list of filter names.
func inlineFilters(obj Object) []string {
	switch v := obj.(type) {
	case Name:
		return []string{string(v)}
	case Array:
		names := make([]string, 0, len(v))
		for _, elem := range v {
			if name, ok := elem.(Name); ok {
				names = append(names, string(name))
			}
		}
		return names
	default:
		return nil
	}
}

// inlineCCITTParams extracts the CCITT decode parameters, defaulting the
// dimensions to the image's own.
func inlineCCITTParams(obj Object, width, height int) imaging.CCITTParams {
	params := imaging.CCITTParams{Columns: width, Rows: height}
	dict, ok := obj.(Dict)
	if !ok {
		return params
	}
	if k, ok := ToInt(dict.Get("K")); ok {
		params.K = k
	}
	if cols, ok := ToInt(dict.Get("Columns")); ok {
		params.Columns = cols
	}
	if rows, ok := ToInt(dict.Get("Rows")); ok {
		params.Rows = rows
	}
	if blackIs1, ok := dict.Get("BlackIs1").(Bool); ok {
		params.BlackIs1 = bool(blackIs1)
	}
	return params
}
