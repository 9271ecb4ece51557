// Package download runs works through the whole pipeline, from name to
// assembled document.
//
// # Manager
//
// The Manager processes one work at a time:
//
//  1. Resolve the work name to its content root
//  2. Discover chapters, then each chapter's pages (bounded fan-out)
//  3. Sort pages numerically and prepare the staging workspace
//  4. Download every page through a bounded Scheduler
//  5. Assemble the document in forward or reverse order
//  6. Remove the workspace, then optionally publish the document
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	manager.Prepare()
//
//	work, _ := model.NewWorkRequest("One Piece")
//	path, err := manager.ProcessWork(ctx, work, model.OrderForward)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Batches
//
// Batch feeds a list of names to a Manager sequentially. A failed work is
// reported and does not stop the batch:
//
//	names, _ := download.ReadWorkList(file)
//	results := download.NewBatch(manager, model.OrderForward, logger, nil).Run(ctx, names)
//
// # Errors
//
// Every failure of ProcessWork is a *StageError naming the work and the
// stage. A failed page download aborts the work on the spot: remaining
// pages are skipped, no document is written and the *DownloadError names
// the page. Pages are never retried.
package download
