package classification

import (
	"context"
	"sync"

	"Atlas_KB/pkg/logger"
)

// DefaultConfidenceThreshold is the heuristic confidence below which a source
// escalates to the model classifier.
const DefaultConfidenceThreshold = 80

// DefaultBatchConcurrency bounds concurrent model calls in batch mode.
const DefaultBatchConcurrency = 5

// Options tune a single classification call.
type Options struct {
	// ForceLLM escalates regardless of the heuristic confidence.
	ForceLLM bool
	// HeuristicOnly suppresses escalation entirely and wins over ForceLLM.
	HeuristicOnly bool
	// Threshold overrides the orchestrator's confidence threshold when > 0.
	Threshold float64
}

// Orchestrator runs the two-stage classification: the heuristic pass always,
// the model pass only when the heuristic result is weak or the caller forces
// it. A model failure is never surfaced; the heuristic result stands.
type Orchestrator struct {
	heuristic *HeuristicClassifier
	model     *ModelClassifier
	threshold float64
	log       *logger.Logger
}

// NewOrchestrator creates an Orchestrator. The model classifier may be nil,
// in which case every call resolves on the heuristic alone. A non-positive
// threshold selects the default.
func NewOrchestrator(heuristic *HeuristicClassifier, model *ModelClassifier, threshold float64, log *logger.Logger) *Orchestrator {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Orchestrator{
		heuristic: heuristic,
		model:     model,
		threshold: threshold,
		log:       log,
	}
}

// ClassifyWebSource classifies one web source. It always returns a usable
// classification; degraded paths are visible through the Source field.
func (o *Orchestrator) ClassifyWebSource(ctx context.Context, input Input, opts *Options) WebSourceClassification {
	heuristicResult := o.heuristic.ClassifyByHeuristic(input.URL)
	if opts != nil && opts.HeuristicOnly {
		return heuristicResult
	}

	threshold := o.threshold
	if opts != nil && opts.Threshold > 0 {
		threshold = opts.Threshold
	}
	force := opts != nil && opts.ForceLLM

	escalate := force || heuristicResult.Confidence < threshold || heuristicResult.Category == CategoryUnknown
	if !escalate || o.model == nil {
		return heuristicResult
	}

	modelResult, err := o.model.Classify(ctx, input, heuristicResult)
	if err != nil {
		o.log.WithField("url", input.URL).Warn("Model classification failed, keeping heuristic result: " + err.Error())
		return heuristicResult
	}
	return merge(heuristicResult, modelResult)
}

// merge blends the model answer with the heuristic one. The model wins on the
// classification fields unless it punted, tags union, confidence averages.
func merge(heuristic WebSourceClassification, model *ModelResult) WebSourceClassification {
	out := heuristic
	out.Source = SourceMixed

	if model.Category != "" && model.Category != CategoryUnknown {
		out.Category = model.Category
	}
	if model.JurisdictionCode != "" && model.JurisdictionCode != CategoryUnknown {
		out.JurisdictionCode = model.JurisdictionCode
	}
	if model.SourceType != "" {
		out.SourceType = model.SourceType
	}
	if model.VerificationLevel != "" {
		out.VerificationLevel = model.VerificationLevel
	}

	out.Tags = unionTags(heuristic.Tags, model.Tags)

	confidence := (heuristic.Confidence + model.Confidence) / 2
	if confidence > 100 {
		confidence = 100
	}
	out.Confidence = confidence
	return out
}

// unionTags keeps the first list's order and appends unseen tags from the
// second.
func unionTags(first, second []string) []string {
	out := append([]string{}, first...)
	seen := make(map[string]struct{}, len(first))
	for _, tag := range first {
		seen[tag] = struct{}{}
	}
	for _, tag := range second {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ClassifyBatch classifies inputs one by one in order.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, inputs []Input, opts *Options) []WebSourceClassification {
	results := make([]WebSourceClassification, len(inputs))
	for i, input := range inputs {
		results[i] = o.ClassifyWebSource(ctx, input, opts)
	}
	return results
}

// ClassifyBatchConcurrent classifies inputs in windows of at most concurrency
// sources at a time, preserving input order in the result. A non-positive
// concurrency selects the default.
func (o *Orchestrator) ClassifyBatchConcurrent(ctx context.Context, inputs []Input, opts *Options, concurrency int) []WebSourceClassification {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]WebSourceClassification, len(inputs))
	for start := 0; start < len(inputs); start += concurrency {
		end := start + concurrency
		if end > len(inputs) {
			end = len(inputs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = o.ClassifyWebSource(ctx, inputs[i], opts)
			}(i)
		}
		wg.Wait()
	}
	return results
}
