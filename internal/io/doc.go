// Package ioutils provides file system and image utilities.
//
// This package contains functions for:
//   - The staging workspace lifecycle
//   - File writing and directory creation
//   - Filename sanitization for cross-platform compatibility
//   - Image dimension reading and title page rendering
//
// # Staging Workspaces
//
//	stager := ioutils.NewStager(stagingRoot)
//	stager.Sweep()
//
//	ws, err := stager.PrepareWorkspace("one-piece")
//	dir, created, err := stager.PrepareChapterDir(ws, 0)
//	defer stager.Cleanup(ws)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("fate/zero") // Returns "fate_zero"
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	dim, _ := svc.ReadDimensions("/staging/one-piece/0/1.jpg")
//	png, _ := svc.RenderTitlePage(ctx, "one piece")
package ioutils
