package operations

// One download run, end to end:
// 1. Resolve the build and its manifest (fatal on failure)
// 2. Load every compatible depot's file-item manifest (fatal on failure)
// 3. Resolve generation-2 and generation-1 secure links per product id
//    (a product with no links in either generation is recorded, its files
//    fail individually)
// 4. Skip files that already exist and verify
// 5. Fan out per-file download+assembly under a bounded worker pool,
//    isolating per-file failures from the rest of the batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"GalaxyClientv2/internal/config"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/assembler"
	"GalaxyClientv2/pkg/downloader"
	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/gogerrors"
	"GalaxyClientv2/pkg/languages"
	"GalaxyClientv2/pkg/manifest"
	"GalaxyClientv2/pkg/securelink"
	"GalaxyClientv2/pkg/verifier"
)

type Coordinator struct {
	API         *gogapi.Client
	Manifests   *manifest.Resolver
	SecureLinks *securelink.Resolver
	Fetcher     *downloader.ChunkFetcher

	Task     InstallTask
	Progress *Progress

	// Events receives snapshots on state transitions and file completions.
	// Emission drops when the buffer is full, slow consumers never stall
	// workers and the websocket falls back to polling anyway.
	Events chan ProgressSnapshot

	done      chan struct{}
	closeOnce sync.Once
}

func NewCoordinator(api *gogapi.Client, task InstallTask) *Coordinator {
	if task.Language == "" {
		task.Language = config.Config.DefaultTargetLanguage
	}
	task.Language = languages.Parse(task.Language)
	if task.Bitness == 0 {
		task.Bitness = config.Config.DefaultTargetBitness
	}
	if task.WorkerCount <= 0 {
		task.WorkerCount = config.Config.WorkerCount
	}
	if task.Platform == "" {
		task.Platform = "windows"
	}

	return &Coordinator{
		API:         api,
		Manifests:   manifest.NewResolver(api),
		SecureLinks: securelink.NewResolver(api),
		Fetcher:     downloader.NewChunkFetcher(),
		Task:        task,
		Progress:    &Progress{},
		Events:      make(chan ProgressSnapshot, 64),
		done:        make(chan struct{}),
	}
}

// Cancel stops in-flight and not-yet-started work. Used on fatal failures
// and by the task API.
func (c *Coordinator) Cancel() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Coordinator) canceled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) setState(state State) {
	c.Progress.SetState(state)
	c.emitProgress()
}

func (c *Coordinator) emitProgress() {
	select {
	case c.Events <- c.Progress.Snapshot():
	default:
	}
}

func (c *Coordinator) fatal(result *Result, err error) *Result {
	logging.GlobalLogger.Error("Download run failed: " + err.Error())
	c.Cancel()
	result.State = StateFailed
	result.Err = err
	c.setState(StateFailed)
	return result
}

// Run executes the full state machine and always returns a Result.
func (c *Coordinator) Run() *Result {
	result := &Result{}

	// ResolvingManifest: no partial download is attempted past a failure
	// here.
	c.setState(StateResolvingManifest)

	builds, err := c.API.GetBuilds(c.Task.ProductID, c.Task.Platform)
	if err != nil {
		return c.fatal(result, gogerrors.Wrapf(gogerrors.ErrManifestUnavailable, "listing builds for %s: %v", c.Task.ProductID, err))
	}
	build, err := manifest.SelectBuild(builds, c.Task.Branch)
	if err != nil {
		return c.fatal(result, err)
	}
	result.Build = build
	logging.GlobalLogger.Info(fmt.Sprintf("Selected build %s (version %q, generation %d) for product %s",
		build.BuildID, build.VersionName, build.Generation, c.Task.ProductID))

	buildManifest, err := c.Manifests.LoadManifest(build)
	if err != nil {
		return c.fatal(result, err)
	}

	installDir := filepath.Join(c.Task.InstallPath, buildManifest.InstallDirectory)
	result.InstallDirectory = installDir

	depots := manifest.FilterDepots(buildManifest.Depots, c.Task.Language, c.Task.Bitness)
	logging.GlobalLogger.Info(fmt.Sprintf("%d of %d depots compatible with language %s bitness %d, %d declared bytes, primary executable %q",
		len(depots), len(buildManifest.Depots), c.Task.Language, c.Task.Bitness,
		buildManifest.TotalSize(depots), buildManifest.PrimaryExecutable()))

	// Depot manifests are fatal-tier: a run with a missing depot listing
	// would silently install an incomplete game.
	var files []models.FileItem
	var dirs []models.DirectoryItem
	var links []models.LinkItem
	for i := range depots {
		// Only DLC and redistributable depots declare their own product id;
		// the rest belong to the game being installed.
		if depots[i].ProductID == "" {
			depots[i].ProductID = c.Task.ProductID
		}

		depotFiles, err := c.Manifests.LoadDepotFiles(&depots[i])
		if err != nil {
			return c.fatal(result, err)
		}
		f, d, l := manifest.ClassifyItems(depotFiles, depots[i].ProductID)
		files = append(files, f...)
		dirs = append(dirs, d...)
		links = append(links, l...)
	}

	files = c.applyFileFilter(files)

	// ResolvingSecureLinks: both generations for every distinct product id,
	// generation 1 is a fallback rather than an up-front choice.
	c.setState(StateResolvingSecureLinks)
	productsWithoutLinks := c.resolveSecureLinks(depots)

	asm, err := assembler.NewAssembler(installDir, filepath.Join(installDir, ".staging"))
	if err != nil {
		return c.fatal(result, err)
	}

	remaining, skipped, err := verifier.ScanExisting(installDir, files, logging.GlobalLogger.Info)
	if err != nil {
		return c.fatal(result, gogerrors.Wrap(gogerrors.ErrFileWrite, err.Error()))
	}

	result.TotalFiles = len(files)
	result.SkippedFiles = skipped
	result.TotalBytes = compressedTotal(remaining)
	c.Progress.SetTotals(len(files), skipped, result.TotalBytes)

	// Downloading
	c.setState(StateDownloading)
	c.materializeDirectShapes(asm, dirs, links, result)
	c.downloadFiles(asm, remaining, productsWithoutLinks, result)

	if c.canceled() {
		result.State = StateFailed
		result.Err = fmt.Errorf("download run canceled")
		c.setState(StateFailed)
		return result
	}

	asm.Cleanup()
	result.State = StateCompleted
	c.setState(StateCompleted)
	logging.GlobalLogger.Info(fmt.Sprintf("Run %s: %d written, %d skipped, %d failed, %d bytes downloaded",
		result.Outcome(), result.WrittenFiles, result.SkippedFiles, len(result.FailedFiles), result.DownloadedBytes))
	return result
}

func (c *Coordinator) applyFileFilter(files []models.FileItem) []models.FileItem {
	if c.Task.FileFilter == "" {
		return files
	}
	matched := make([]models.FileItem, 0, len(files))
	for _, f := range files {
		if strings.Contains(f.Path, c.Task.FileFilter) {
			matched = append(matched, f)
		}
	}
	logging.GlobalLogger.Info(fmt.Sprintf("File filter %q matched %d of %d files", c.Task.FileFilter, len(matched), len(files)))
	return matched
}

// resolveSecureLinks warms the session cache for every product id the
// depots reference. Returns the products with no usable endpoints in either
// generation; their files will fail individually instead of aborting the
// run.
func (c *Coordinator) resolveSecureLinks(depots []models.Depot) map[string]bool {
	productIDs := map[string]bool{c.Task.ProductID: true}
	for i := range depots {
		if depots[i].ProductID != "" {
			productIDs[depots[i].ProductID] = true
		}
	}

	withoutLinks := make(map[string]bool)
	for productID := range productIDs {
		gen2, err2 := c.SecureLinks.Resolve(productID, 2)
		gen1, err1 := c.SecureLinks.Resolve(productID, 1)
		if len(gen2) == 0 && len(gen1) == 0 {
			logging.GlobalLogger.Error(fmt.Sprintf("No secure links for product %s in either generation (gen2: %v, gen1: %v)", productID, err2, err1))
			withoutLinks[productID] = true
		}
	}
	return withoutLinks
}

func (c *Coordinator) materializeDirectShapes(asm *assembler.Assembler, dirs []models.DirectoryItem, links []models.LinkItem, result *Result) {
	for _, dir := range dirs {
		if err := asm.MakeDirectory(dir); err != nil {
			logging.GlobalLogger.Error(err.Error())
			result.FailedFiles = append(result.FailedFiles, FailedFile{Path: dir.Path, Err: err})
		}
	}
	for _, link := range links {
		if err := asm.MakeLink(link); err != nil {
			logging.GlobalLogger.Error(err.Error())
			result.FailedFiles = append(result.FailedFiles, FailedFile{Path: link.Path, Err: err})
		}
	}
}

// downloadFiles runs the bounded worker pool. A failed file is recorded and
// skipped, its siblings keep going.
func (c *Coordinator) downloadFiles(asm *assembler.Assembler, files []models.FileItem, productsWithoutLinks map[string]bool, result *Result) {
	jobs := make(chan models.FileItem)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < c.Task.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if c.canceled() {
					continue
				}

				bytes, err := c.downloadFile(asm, item, productsWithoutLinks)

				mu.Lock()
				result.DownloadedBytes += bytes
				if err != nil {
					hash := ""
					if len(item.Chunks) > 0 {
						hash = item.Chunks[0].CompressedMd5
					}
					result.FailedFiles = append(result.FailedFiles, FailedFile{Path: item.Path, ContentHash: hash, Err: err})
					c.Progress.IncrementFailedFiles()
					logging.GlobalLogger.Error(fmt.Sprintf("File failed, continuing with siblings: %s: %v", item.Path, err))
				} else {
					result.WrittenFiles++
					c.Progress.IncrementCompletedFiles()
				}
				mu.Unlock()

				c.emitProgress()
			}
		}()
	}

	for _, item := range files {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}

// downloadFile fetches a file's chunks in manifest order and assembles them
// through a staging writer. Chunk bytes are concatenated in listed order,
// never re-sorted.
func (c *Coordinator) downloadFile(asm *assembler.Assembler, item models.FileItem, productsWithoutLinks map[string]bool) (int64, error) {
	if productsWithoutLinks[item.ProductID] {
		return 0, gogerrors.Wrapf(gogerrors.ErrSecureLinkUnavailable, "no endpoints for product %s", item.ProductID)
	}

	// Cache hits after the warm-up phase, no network here.
	gen2, _ := c.SecureLinks.Resolve(item.ProductID, 2)
	gen1, _ := c.SecureLinks.Resolve(item.ProductID, 1)

	writer, err := asm.Begin(item)
	if err != nil {
		return 0, err
	}

	var downloaded int64
	for _, chunk := range item.Chunks {
		if c.canceled() {
			writer.Abort()
			return downloaded, fmt.Errorf("canceled while downloading %s", item.Path)
		}

		fetched, err := c.Fetcher.Fetch(chunk.CompressedMd5, gen2, gen1)
		if err != nil {
			writer.Abort()
			return downloaded, err
		}
		if err := writer.WriteChunk(fetched.Data); err != nil {
			writer.Abort()
			return downloaded, err
		}

		downloaded += chunk.CompressedSize
		c.Progress.AddDownloadedBytes(chunk.CompressedSize)
	}

	if err := writer.Commit(); err != nil {
		writer.Abort()
		return downloaded, err
	}
	return downloaded, nil
}

func compressedTotal(files []models.FileItem) int64 {
	var total int64
	for i := range files {
		for _, chunk := range files[i].Chunks {
			total += chunk.CompressedSize
		}
	}
	return total
}
