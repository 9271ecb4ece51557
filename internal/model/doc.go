// Package model defines the core data structures used throughout
// the manga-downloader application.
//
// # WorkRequest
//
// WorkRequest is a normalized work name:
//
//	work, _ := model.NewWorkRequest("One Piece")
//	fmt.Println(work.Name)          // "one-piece"
//	fmt.Println(work.DisplayName()) // "one piece"
//	fmt.Println(work.FileName())    // "one-piece.pdf"
//
// # Chapter and Page
//
// Chapters keep the order in which they were discovered on the content
// root. Pages carry the number embedded in their URL and a deterministic
// staging path:
//
//	page := model.NewPage(chapter.Index, 3, pageURL, chapterDir)
//	fmt.Println(page.StagingPath) // chapterDir + "/3.jpg"
//
// # ProgressCounter
//
// ProgressCounter is shared by the download workers of one work:
//
//	var counter model.ProgressCounter
//	counter.AddTotal(len(pages))
//	counter.Finalize()
//	done, total, err := counter.Complete()
package model
