// Package assemble builds the output document of a work from its
// downloaded page images.
//
// # Ordering
//
// Plan flattens chapters and their sorted pages into document order,
// forward or fully reversed:
//
//	pages, err := assemble.Plan(chapters, pagesByChapter, model.OrderReverse)
//
// # Assembly
//
// The Assembler writes a title page followed by one page per image, each
// sized to the image's native dimensions:
//
//	asm := assemble.NewAssembler(assemble.NewPDFCompositor(), images, saveDir)
//	path, err := asm.Assemble(ctx, assemble.Input{...})
//
// # Compositors
//
// PDFCompositor is the production Compositor, built on pdfcpu. Documents
// are written beside their target under a hidden ".part.pdf" name and renamed
// into place only once complete.
package assemble
