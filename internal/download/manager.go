package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/manga-downloader/internal/assemble"
	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/http"
	ioutils "github.com/handiism/manga-downloader/internal/io"
	"github.com/handiism/manga-downloader/internal/model"
	"github.com/handiism/manga-downloader/internal/site"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// DefaultDiscoveryConcurrency is the number of chapters discovered at once.
const DefaultDiscoveryConcurrency = 4

// Publisher copies a finished document somewhere else and returns its new location.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolver replaces the resolver selected from the settings.
func WithResolver(r site.Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithSessionOpener sets how rendered lookups open a browser session.
// It is only used when the settings select the rendered resolver.
func WithSessionOpener(open site.SessionOpener) Option {
	return func(m *Manager) { m.openSession = open }
}

// WithCompositor replaces the PDF compositor.
func WithCompositor(c assemble.Compositor) Option {
	return func(m *Manager) { m.compositor = c }
}

// WithDownloader replaces the page downloader.
func WithDownloader(d Downloader) Option {
	return func(m *Manager) { m.downloader = d }
}

// WithPublisher enables publishing of every finished document.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Inventory is what discovery found for one work.
type Inventory struct {
	Work     model.WorkRequest
	Root     model.ContentRoot
	Chapters []model.Chapter

	// Links holds each chapter's page links sorted by page number,
	// indexed like Chapters.
	Links [][]site.NumberedLink
}

// PageCount returns the number of pages across all chapters.
func (inv *Inventory) PageCount() int {
	n := 0
	for _, links := range inv.Links {
		n += len(links)
	}
	return n
}

// Manager processes works, one call to ProcessWork per work.
//
// Each work runs through resolve, discover, workspace, download and
// assemble. A failure at any stage abandons the work and is returned as a
// *StageError; the workspace is removed whatever the outcome.
type Manager struct {
	settings    *config.Settings
	httpClient  *http.Client
	downloader  Downloader
	resolver    site.Resolver
	openSession site.SessionOpener
	discoverer  *site.Discoverer
	stager      *ioutils.Stager
	compositor  assemble.Compositor
	assembler   *assemble.Assembler
	publisher   Publisher
	logger      *slog.Logger

	counter   atomic.Pointer[model.ProgressCounter]
	scheduler atomic.Pointer[Scheduler]

	onProgress func(ProgressEvent)
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:    settings,
		httpClient:  http.NewClient(settings.UserAgent, settings.RequestTimeoutDuration()),
		openSession: site.OpenRodSession,
		stager:      ioutils.NewStager(settings.StagingRoot),
		onProgress:  onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.downloader == nil {
		m.downloader = m.httpClient
	}
	if m.compositor == nil {
		m.compositor = assemble.NewPDFCompositor()
	}
	if m.resolver == nil {
		m.resolver = m.newResolver()
	}
	m.discoverer = site.NewDiscoverer(m.httpClient)
	m.assembler = assemble.NewAssembler(m.compositor, ioutils.NewImageService(), settings.SaveLocation)

	return m
}

func (m *Manager) newResolver() site.Resolver {
	siteCfg := m.settings.ToSiteConfig()
	if m.settings.ResolveMode == config.ResolveRendered {
		return site.NewRenderedResolver(m.openSession, siteCfg, site.RenderedConfig{
			Expression: m.settings.RenderIDExpression,
			Interval:   m.settings.RenderPollIntervalDuration(),
			Timeout:    m.settings.RenderTimeoutDuration(),
		}, m.logger)
	}
	return site.NewStaticResolver(m.httpClient, siteCfg)
}

// Prepare clears whatever a previous run left in the staging root.
// It must be called once before the first work is processed.
func (m *Manager) Prepare() {
	if removed := m.stager.Sweep(); removed > 0 {
		m.logger.Info("swept staging root", "root", m.stager.Root(), "removed", removed)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Removed %d leftover staging entries", removed), Level: LevelVerbose})
	}
}

// GetProgress returns the progress of the work being processed.
func (m *Manager) GetProgress() (receivedBytes, completedPages, totalPages int64) {
	if c := m.counter.Load(); c != nil {
		completedPages, totalPages = c.Snapshot()
	}
	if s := m.scheduler.Load(); s != nil {
		receivedBytes = s.BytesReceived()
	}
	return receivedBytes, completedPages, totalPages
}

// Inspect resolves and discovers work without downloading anything.
func (m *Manager) Inspect(ctx context.Context, work model.WorkRequest) (*Inventory, error) {
	return m.discover(ctx, work, new(model.ProgressCounter), m.logger.With("work", work.Name))
}

// ProcessWork downloads work and assembles it into a document in order.
//
// It returns the local path of the document. A configured Publisher is
// tried afterwards; its failure is reported as a warning and does not fail
// the work.
func (m *Manager) ProcessWork(ctx context.Context, work model.WorkRequest, order model.Order) (string, error) {
	logger := m.logger.With("run", uuid.NewString(), "work", work.Name)
	start := time.Now()

	counter := new(model.ProgressCounter)
	m.counter.Store(counter)
	m.scheduler.Store(nil)

	m.progress(ProgressEvent{Message: fmt.Sprintf("Looking up %s", work.DisplayName()), Level: LevelInfo})
	inv, err := m.discover(ctx, work, counter, logger)
	if err != nil {
		return "", err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d chapters, %d pages", len(inv.Chapters), inv.PageCount()), Level: LevelInfo})

	ws, err := m.stager.PrepareWorkspace(work.Name)
	if err != nil {
		return "", &StageError{Work: work.Name, Stage: StageWorkspace, Err: err}
	}
	defer func() {
		if err := m.stager.Cleanup(ws); err != nil {
			logger.Warn("workspace cleanup failed", "dir", ws.RootDir, "error", err)
		}
	}()

	pages, err := m.stagePages(ws, inv)
	if err != nil {
		return "", &StageError{Work: work.Name, Stage: StageWorkspace, Err: err}
	}

	if err := m.downloadPages(ctx, inv, pages, logger); err != nil {
		return "", &StageError{Work: work.Name, Stage: StageDownload, Err: err}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Assembling %s (%s order)", work.FileName(), order), Level: LevelInfo})
	output, err := m.assembler.Assemble(ctx, assemble.Input{
		Work:       work,
		Chapters:   inv.Chapters,
		Pages:      pages,
		Order:      order,
		StagingDir: ws.RootDir,
	})
	if err != nil {
		return "", &StageError{Work: work.Name, Stage: StageAssemble, Err: err}
	}
	logger.Info("work assembled", "output", output, "pages", inv.PageCount(), "elapsed", time.Since(start))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %s", output), Level: LevelSuccess})

	if m.publisher != nil {
		location, err := m.publisher.Publish(ctx, output)
		if err != nil {
			logger.Warn("publish failed", "output", output, "error", err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error publishing %s: %v", output, err), Level: LevelWarning})
			return output, nil
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Published to %s", location), Level: LevelSuccess})
	}

	return output, nil
}

// discover resolves the content root and lists every chapter's pages.
// Everything is known, and counter finalized, before it returns.
func (m *Manager) discover(ctx context.Context, work model.WorkRequest, counter *model.ProgressCounter, logger *slog.Logger) (*Inventory, error) {
	root, err := m.resolver.Resolve(ctx, work)
	if err != nil {
		return nil, &StageError{Work: work.Name, Stage: StageResolve, Err: err}
	}
	logger.Debug("resolved content root", "url", root.URL)

	chapterLinks, err := m.discoverer.Discover(ctx, root.URL)
	if err != nil {
		return nil, &StageError{Work: work.Name, Stage: StageDiscover, Err: err}
	}

	inv := &Inventory{
		Work:     work,
		Root:     root,
		Chapters: make([]model.Chapter, len(chapterLinks)),
		Links:    make([][]site.NumberedLink, len(chapterLinks)),
	}

	limit := m.settings.MaxConcurrentChapterDiscovery
	if limit < 1 {
		limit = DefaultDiscoveryConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, link := range chapterLinks {
		inv.Chapters[i] = model.Chapter{Index: i, SourceURL: link}
		g.Go(func() error {
			links, err := m.discoverer.Discover(gctx, link)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", i+1, err)
			}
			sorted, err := site.SortPages(links)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", i+1, err)
			}
			sorted, err = site.DedupePages(sorted)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", i+1, err)
			}

			inv.Links[i] = sorted
			counter.AddTotal(len(sorted))
			logger.Debug("discovered chapter", "chapter", i+1, "pages", len(sorted))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &StageError{Work: work.Name, Stage: StageDiscover, Err: err}
	}
	counter.Finalize()

	return inv, nil
}

// stagePages creates the chapter directories and assigns every page its
// staging path. Directories are created one at a time since the
// workspace's chapter map is not safe for concurrent use.
func (m *Manager) stagePages(ws *ioutils.Workspace, inv *Inventory) (map[int][]model.Page, error) {
	pages := make(map[int][]model.Page, len(inv.Chapters))
	for _, chapter := range inv.Chapters {
		dir, _, err := m.stager.PrepareChapterDir(ws, chapter.Index)
		if err != nil {
			return nil, err
		}

		links := inv.Links[chapter.Index]
		chapterPages := make([]model.Page, 0, len(links))
		for _, link := range links {
			chapterPages = append(chapterPages, model.NewPage(chapter.Index, link.Number, link.URL, dir))
		}
		pages[chapter.Index] = chapterPages
	}
	return pages, nil
}

func (m *Manager) downloadPages(ctx context.Context, inv *Inventory, pages map[int][]model.Page, logger *slog.Logger) error {
	counter := m.counter.Load()
	sched := NewScheduler(ctx, m.downloader, counter, m.settings.MaxConcurrentPageDownloads, func(page model.Page, completed, total int64) {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloaded chapter %d page %d (%d/%d)", page.ChapterIndex+1, page.Number, completed, total),
			Level:   LevelVerbose,
		})
	})

	m.scheduler.Store(sched)
	enqueueAll(sched, inv.Chapters, pages)

	err := sched.Wait()

	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		logger.Error("page download failed", "chapter", dlErr.Page.ChapterIndex+1, "page", dlErr.Page.Number, "url", dlErr.Page.SourceURL, "error", dlErr.Err)
	}
	return err
}

// enqueueAll schedules pages chapter by chapter until the pool aborts.
func enqueueAll(sched *Scheduler, chapters []model.Chapter, pages map[int][]model.Page) {
	for _, chapter := range chapters {
		for _, page := range pages[chapter.Index] {
			if !sched.Enqueue(page) {
				return
			}
		}
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
