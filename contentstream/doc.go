// Package contentstream parses PDF content streams into operator sequences
// and interprets them to locate embedded raster images in page space.
//
// The parser tokenizes a decoded content stream into Operations, each an
// operator with its preceding operands. The Interpreter walks those
// operations, maintaining the current transformation matrix through the
// q/Q/cm operators, and produces an ExtractedImage for every image paint
// (named XObject or inline) that meets the configured minimum dimensions.
package contentstream
