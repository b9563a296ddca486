package downloader

import (
	"fmt"
	"time"

	"imgdataset/pkg/dictionary"
	"imgdataset/pkg/logger"
)

// Job is one entry of a batch. ID is empty when the name should come from
// the URL's ixid.
type Job struct {
	Index int
	ID    string
	URL   string
}

// EntryResult is the outcome of one batch entry
type EntryResult struct {
	Index    int
	ID       string
	URL      string
	Path     string
	Err      error
	Duration time.Duration
}

// Report lists entry results in batch order
type Report struct {
	Results   []EntryResult
	Succeeded int
	Failed    int
}

// Paths returns the stored paths of successful entries, in batch order
func (r Report) Paths() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Err == nil && res.Path != "" {
			paths = append(paths, res.Path)
		}
	}
	return paths
}

// DictionaryLoader reads dictionaries by label or path
type DictionaryLoader interface {
	Load(label string) (*dictionary.Dictionary, error)
	LoadFile(path string) (*dictionary.Dictionary, error)
}

// DestinationLog appends stored paths to a label's log
type DestinationLog interface {
	AppendDestinations(label string, paths []string) (string, error)
}

// Observer is told about batch progress as entries finish
type Observer interface {
	Started(total int)
	Completed(name string, err error)
	Finished(succeeded, failed int)
}

// Batch persists every entry of a dictionary or URL list. Entries are
// independent: a failing entry is recorded and the batch moves on.
type Batch struct {
	persister *Persister
	dicts     DictionaryLoader
	dests     DestinationLog
	workers   int
	observer  Observer
	logger    logger.Logger
}

// NewBatch creates a batch downloader. workers <= 1 runs strictly
// sequentially.
func NewBatch(persister *Persister, dicts DictionaryLoader, dests DestinationLog, workers int, log logger.Logger) *Batch {
	if log == nil {
		log = logger.GetLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		persister: persister,
		dicts:     dicts,
		dests:     dests,
		workers:   workers,
		logger:    log,
	}
}

// SetObserver registers a progress observer
func (b *Batch) SetObserver(o Observer) {
	b.observer = o
}

// DownloadAll persists every (id, url) of dict in its stored order
func (b *Batch) DownloadAll(dict *dictionary.Dictionary, transform Transform) Report {
	entries := dict.Entries()
	jobs := make([]Job, len(entries))
	for i, e := range entries {
		jobs[i] = Job{Index: i, ID: e.ID, URL: e.URL}
	}
	return b.run(jobs, transform)
}

// DownloadAllFromFile loads a dictionary file and persists its entries
func (b *Batch) DownloadAllFromFile(path string, transform Transform) (Report, error) {
	dict, err := b.dicts.LoadFile(path)
	if err != nil {
		return Report{}, err
	}
	return b.DownloadAll(dict, transform), nil
}

// DownloadAllURLs persists each URL under its ixid
func (b *Batch) DownloadAllURLs(urls []string, transform Transform) Report {
	jobs := make([]Job, len(urls))
	for i, u := range urls {
		jobs[i] = Job{Index: i, URL: u}
	}
	return b.run(jobs, transform)
}

// DownloadLabel persists the dictionary saved for label and appends the
// stored paths to the label's destination log
func (b *Batch) DownloadLabel(label string, transform Transform) (Report, error) {
	dict, err := b.dicts.Load(label)
	if err != nil {
		return Report{}, err
	}

	report := b.DownloadAll(dict, transform)

	if paths := report.Paths(); len(paths) > 0 {
		if _, err := b.dests.AppendDestinations(label, paths); err != nil {
			return report, fmt.Errorf("failed to record destinations: %w", err)
		}
	}

	b.logger.InfoWithFields("label downloaded", map[string]interface{}{
		"label":     label,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})

	return report, nil
}

func (b *Batch) run(jobs []Job, transform Transform) Report {
	if b.observer != nil {
		b.observer.Started(len(jobs))
	}

	results := make([]EntryResult, len(jobs))

	if b.workers <= 1 || len(jobs) <= 1 {
		for i, job := range jobs {
			results[i] = b.process(job, transform)
			b.completed(results[i], i+1, len(jobs))
		}
	} else {
		pool := NewWorkerPool(b.workers, b.persister, transform, b.logger)
		pool.Start()

		go func() {
			for _, job := range jobs {
				if err := pool.Submit(job); err != nil {
					b.logger.WithError(err).Error("failed to submit job")
				}
			}
			pool.Stop()
		}()

		done := 0
		for res := range pool.Results() {
			results[res.Index] = res
			done++
			b.completed(res, done, len(jobs))
		}
	}

	report := Report{Results: results}
	for _, res := range results {
		if res.Err == nil {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	if b.observer != nil {
		b.observer.Finished(report.Succeeded, report.Failed)
	}

	return report
}

func (b *Batch) completed(res EntryResult, done, total int) {
	logger.LogBatchProgress(b.logger, res.ID, done, total)
	if b.observer != nil {
		b.observer.Completed(res.ID, res.Err)
	}
}

// process persists one job
func (b *Batch) process(job Job, transform Transform) EntryResult {
	return processJob(b.persister, job, transform)
}

func processJob(p *Persister, job Job, transform Transform) EntryResult {
	start := time.Now()
	res := p.Persist(job.URL, job.ID, transform)

	id := job.ID
	if id == "" {
		id = res.Name
	}

	return EntryResult{
		Index:    job.Index,
		ID:       id,
		URL:      job.URL,
		Path:     res.Path,
		Err:      res.Err,
		Duration: time.Since(start),
	}
}
