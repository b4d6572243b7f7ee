// ABOUTME: Item annotation: relevance filtering and summarization via text generation
// ABOUTME: Verdicts and summaries are cached per (group, item fingerprint); failures degrade

package annotate

import (
	"context"
	"fmt"
	"strings"

	"rssfilter-api/core/domain"
	"rssfilter-api/core/interfaces"
)

// FilterConfig controls relevance filtering for one group.
type FilterConfig struct {
	Enabled  bool
	Prompt   string
	Provider string
}

// SummaryConfig controls summarization for one group.
type SummaryConfig struct {
	Enabled   bool
	MaxLength int
	Provider  string
}

// Annotator applies filtering and summarization to feed items. Both
// steps degrade rather than fail: a filter call that errors keeps the
// item, and a summary call that errors leaves the item unsummarized.
type Annotator struct {
	deps      interfaces.Dependencies
	generator interfaces.TextGenerator
}

// NewAnnotator creates a new annotator over the given text generator.
func NewAnnotator(deps interfaces.Dependencies, generator interfaces.TextGenerator) *Annotator {
	return &Annotator{
		deps:      deps,
		generator: generator,
	}
}

// Process runs filtering then summarization over items for a group and
// returns the surviving items marked processed. The input order is
// preserved.
func (a *Annotator) Process(ctx context.Context, group string, items []domain.FeedItem, filter FilterConfig, summary SummaryConfig) ([]domain.FeedItem, error) {
	kept := make([]domain.FeedItem, 0, len(items))

	for _, item := range items {
		keep, err := a.ShouldKeep(ctx, group, item, filter)
		if err != nil {
			return nil, err
		}
		if !keep {
			a.deps.Logger.Debug("item filtered out", map[string]interface{}{
				"group": group,
				"title": item.Title,
			})
			continue
		}

		if summary.Enabled {
			text, err := a.Summarize(ctx, group, item, summary)
			if err != nil {
				return nil, err
			}
			item.Summary = text
		}

		item.Processed = true
		kept = append(kept, item)
	}

	return kept, nil
}

// ShouldKeep decides whether an item survives the group's relevance
// filter. A disabled filter keeps everything. A generation failure also
// keeps the item: dropping content on a transient provider error would
// lose it permanently.
func (a *Annotator) ShouldKeep(ctx context.Context, group string, item domain.FeedItem, cfg FilterConfig) (bool, error) {
	if !cfg.Enabled || cfg.Prompt == "" {
		return true, nil
	}

	key := fmt.Sprintf("filter:%s:%s", group, item.Fingerprint())
	if a.deps.Cache != nil {
		if data, err := a.deps.Cache.Get(ctx, key); err == nil {
			return string(data) == "true", nil
		}
	}

	prompt := buildFilterPrompt(cfg.Prompt, item)
	answer, err := a.generator.Generate(ctx, prompt, cfg.Provider)
	if err != nil {
		a.deps.Logger.Warn("filter generation failed, keeping item", map[string]interface{}{
			"group": group,
			"title": item.Title,
			"error": err.Error(),
		})
		return true, nil
	}

	keep := parseVerdict(answer)
	if a.deps.Cache != nil {
		verdict := "false"
		if keep {
			verdict = "true"
		}
		if err := a.deps.Cache.Set(ctx, key, []byte(verdict), 0); err != nil {
			a.deps.Logger.Warn("failed to cache filter verdict", map[string]interface{}{
				"group": group,
				"error": err.Error(),
			})
		}
	}

	return keep, nil
}

// Summarize produces a summary for an item, serving a cached one when
// present. A generation failure returns an empty summary.
func (a *Annotator) Summarize(ctx context.Context, group string, item domain.FeedItem, cfg SummaryConfig) (string, error) {
	key := fmt.Sprintf("summary:%s:%s", group, item.Fingerprint())
	if a.deps.Cache != nil {
		if data, err := a.deps.Cache.Get(ctx, key); err == nil {
			return string(data), nil
		}
	}

	prompt := buildSummaryPrompt(item, cfg.MaxLength)
	text, err := a.generator.Generate(ctx, prompt, cfg.Provider)
	if err != nil {
		a.deps.Logger.Warn("summary generation failed, continuing without one", map[string]interface{}{
			"group": group,
			"title": item.Title,
			"error": err.Error(),
		})
		return "", nil
	}

	text = strings.TrimSpace(text)
	if a.deps.Cache != nil {
		if err := a.deps.Cache.Set(ctx, key, []byte(text), 0); err != nil {
			a.deps.Logger.Warn("failed to cache summary", map[string]interface{}{
				"group": group,
				"error": err.Error(),
			})
		}
	}

	return text, nil
}

// buildFilterPrompt renders the yes/no relevance question for an item
func buildFilterPrompt(criteria string, item domain.FeedItem) string {
	var b strings.Builder
	b.WriteString("Determine whether the following article matches this description: ")
	b.WriteString(criteria)
	b.WriteString("\n\nTitle: ")
	b.WriteString(item.Title)
	content := item.Content.PlainText()
	if content != "" {
		b.WriteString("\nContent: ")
		b.WriteString(clip(content, 2000))
	}
	b.WriteString("\n\nAnswer with a single word: yes or no.")
	return b.String()
}

// buildSummaryPrompt renders the summarization request for an item
func buildSummaryPrompt(item domain.FeedItem, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 150
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following article in at most %d words.\n\n", maxLength)
	b.WriteString("Title: ")
	b.WriteString(item.Title)
	content := item.Content.PlainText()
	if content != "" {
		b.WriteString("\nContent: ")
		b.WriteString(clip(content, 4000))
	}
	return b.String()
}

// parseVerdict interprets the model's answer; anything that doesn't
// clearly start with "yes" counts as a rejection
func parseVerdict(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.HasPrefix(answer, "yes")
}

// clip truncates text to at most n bytes for prompt assembly
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
