// ABOUTME: Ingestion pipeline driving one group refresh through its stages
// ABOUTME: fetch -> incremental filter -> dedup -> annotate -> persist -> publish

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rssfilter-api/core/annotate"
	"rssfilter-api/core/dedup"
	"rssfilter-api/core/domain"
	coreerrors "rssfilter-api/core/errors"
	"rssfilter-api/core/interfaces"
)

// State names the stage an ingestion run is in.
type State string

const (
	StateFetching             State = "FETCHING"
	StateFilteringIncremental State = "FILTERING_INCREMENTAL"
	StateDeduping             State = "DEDUPING"
	StateAnnotating           State = "ANNOTATING"
	StatePersisting           State = "PERSISTING"
	StatePublishing           State = "PUBLISHING"
	StateDone                 State = "DONE"
	StateFailed               State = "FAILED"
)

// DedupConfig controls time-windowed title deduplication for one group.
type DedupConfig struct {
	Enabled    bool
	WindowDays int
}

// GroupConfig is everything the pipeline needs to refresh one group.
type GroupConfig struct {
	Name    string
	URLs    []string
	Dedup   DedupConfig
	Filter  annotate.FilterConfig
	Summary annotate.SummaryConfig
}

// Result summarizes one completed run.
type Result struct {
	Group      string
	State      State
	StartedAt  time.Time
	FinishedAt time.Time

	// Item counts as the batch moves through the stages
	Fetched        int
	AfterWatermark int
	AfterDedup     int
	Survived       int

	// OutputPath is where the published document was written, empty when
	// nothing was published
	OutputPath string

	Err error
}

// Annotator is the slice of the annotation service the pipeline uses.
type Annotator interface {
	Process(ctx context.Context, group string, items []domain.FeedItem, filter annotate.FilterConfig, summary annotate.SummaryConfig) ([]domain.FeedItem, error)
}

// Pipeline runs group refreshes. It holds no per-run state; Run may be
// called for different groups concurrently, but runs for the same group
// are expected to be serialized by the caller.
type Pipeline struct {
	deps      interfaces.Dependencies
	source    interfaces.FeedSource
	store     interfaces.EntryStore
	annotator Annotator
	publisher interfaces.Publisher
}

// New creates a pipeline over the given collaborators.
func New(deps interfaces.Dependencies, source interfaces.FeedSource, store interfaces.EntryStore, annotator Annotator, publisher interfaces.Publisher) *Pipeline {
	return &Pipeline{
		deps:      deps,
		source:    source,
		store:     store,
		annotator: annotator,
		publisher: publisher,
	}
}

// Run refreshes one group. The group's watermark advances to the run's
// start time only after a successful publish, so items arriving while
// the run is in flight are picked up by the next one.
//
// A run that survives every stage but ends with zero items is a
// success: nothing is published and the watermark does not move.
func (p *Pipeline) Run(ctx context.Context, cfg GroupConfig) Result {
	res := Result{
		Group:     cfg.Name,
		StartedAt: time.Now(),
	}

	fail := func(state State, err error) Result {
		res.State = StateFailed
		res.FinishedAt = time.Now()
		res.Err = err
		p.deps.Logger.Error("ingestion run failed", map[string]interface{}{
			"group": cfg.Name,
			"stage": string(state),
			"error": err.Error(),
		})
		return res
	}

	if cfg.Name == "" {
		return fail(StateFetching, errors.New("group name cannot be empty"))
	}
	if len(cfg.URLs) == 0 {
		return fail(StateFetching, errors.New("group has no source URLs"))
	}

	p.transition(cfg.Name, StateFetching)
	items, err := p.fetchAll(ctx, cfg)
	if err != nil {
		return fail(StateFetching, err)
	}
	res.Fetched = len(items)

	p.transition(cfg.Name, StateFilteringIncremental)
	items, err = p.filterByWatermark(ctx, cfg.Name, items)
	if err != nil {
		return fail(StateFilteringIncremental, err)
	}
	res.AfterWatermark = len(items)

	p.transition(cfg.Name, StateDeduping)
	if cfg.Dedup.Enabled {
		items = dedup.Dedup(items, cfg.Dedup.WindowDays)
	}
	res.AfterDedup = len(items)

	p.transition(cfg.Name, StateAnnotating)
	items, err = p.annotator.Process(ctx, cfg.Name, items, cfg.Filter, cfg.Summary)
	if err != nil {
		return fail(StateAnnotating, err)
	}
	res.Survived = len(items)

	if len(items) == 0 {
		p.deps.Logger.Info("ingestion run produced no new items", map[string]interface{}{
			"group":   cfg.Name,
			"fetched": res.Fetched,
		})
		res.State = StateDone
		res.FinishedAt = time.Now()
		return res
	}

	p.transition(cfg.Name, StatePersisting)
	for _, item := range items {
		if err := p.store.UpsertEntry(ctx, item); err != nil {
			return fail(StatePersisting, &coreerrors.PersistenceError{Group: cfg.Name, Err: err})
		}
	}

	p.transition(cfg.Name, StatePublishing)
	published, err := p.store.GetEntries(ctx, cfg.Name, interfaces.EntryQuery{ProcessedOnly: true})
	if err != nil {
		return fail(StatePublishing, &coreerrors.PublishError{Group: cfg.Name, Err: err})
	}
	path, err := p.publisher.Publish(ctx, published, cfg.Name)
	if err != nil {
		if !coreerrors.IsPublish(err) {
			err = &coreerrors.PublishError{Group: cfg.Name, Err: err}
		}
		// Entries persisted above stay persisted; only the watermark is
		// held back so the next run retries publication.
		return fail(StatePublishing, err)
	}
	res.OutputPath = path

	if err := p.store.SetWatermark(ctx, cfg.Name, res.StartedAt); err != nil {
		return fail(StatePublishing, &coreerrors.PersistenceError{Group: cfg.Name, Err: err})
	}

	res.State = StateDone
	res.FinishedAt = time.Now()
	p.deps.Logger.Info("ingestion run complete", map[string]interface{}{
		"group":     cfg.Name,
		"fetched":   res.Fetched,
		"survived":  res.Survived,
		"published": path,
	})
	return res
}

// fetchAll pulls every source for the group. A source that fails is
// skipped; the run only fails when no source yields a feed.
func (p *Pipeline) fetchAll(ctx context.Context, cfg GroupConfig) ([]domain.FeedItem, error) {
	var items []domain.FeedItem
	var fetchErrs []error
	succeeded := 0

	for _, url := range cfg.URLs {
		feed, err := p.source.FetchFeed(ctx, url)
		if err != nil {
			srcErr := &coreerrors.SourceFetchError{URL: url, Err: err}
			fetchErrs = append(fetchErrs, srcErr)
			p.deps.Logger.Warn("source fetch failed, skipping", map[string]interface{}{
				"group": cfg.Name,
				"url":   url,
				"error": err.Error(),
			})
			continue
		}
		succeeded++

		for _, item := range feed.Items {
			item.Group = cfg.Name
			items = append(items, item)
		}
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("all %d sources failed: %w", len(cfg.URLs), errors.Join(fetchErrs...))
	}
	return items, nil
}

// filterByWatermark keeps items published strictly after the group's
// watermark. Items without a parsable publish time are kept; the
// watermark cannot judge them and dropping them would lose content.
func (p *Pipeline) filterByWatermark(ctx context.Context, group string, items []domain.FeedItem) ([]domain.FeedItem, error) {
	watermark, ok, err := p.store.Watermark(ctx, group)
	if err != nil {
		return nil, &coreerrors.PersistenceError{Group: group, Err: err}
	}
	if !ok {
		return items, nil
	}

	kept := items[:0]
	for _, item := range items {
		if !item.HasPublished() || item.Published.After(watermark) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// transition logs entry into a pipeline stage
func (p *Pipeline) transition(group string, state State) {
	p.deps.Logger.Debug("pipeline stage", map[string]interface{}{
		"group": group,
		"stage": string(state),
	})
}
