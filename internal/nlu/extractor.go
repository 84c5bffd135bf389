package nlu

import (
	"context"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

// Extractor turns a query into a structured intent
type Extractor interface {
	Extract(ctx context.Context, q Query) (*model.Intent, error)
	Name() string
}

// Racer runs the remote extractors against the rule extractor. Rules
// always produce something; a remote result, when it arrives in time,
// takes precedence field by field. Remote failures are absorbed, never
// surfaced to the caller.
type Racer struct {
	remotes []Extractor
	rules   *RuleExtractor
	timeout time.Duration
	log     logger.Logger
}

// NewRacer builds a racer over the given remote extractors. Remotes
// may be empty; the racer then degrades to rules only.
func NewRacer(remotes []Extractor, timeout time.Duration, log logger.Logger) *Racer {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Racer{
		remotes: remotes,
		rules:   NewRuleExtractor(),
		timeout: timeout,
		log:     log,
	}
}

type remoteResult struct {
	intent   *model.Intent
	provider string
}

// Extract returns the merged intent and the name of the extractor
// whose fields won ("rules" when no remote answered in time). It
// never returns an error: rules are the floor.
func (r *Racer) Extract(ctx context.Context, q Query) (*model.Intent, string) {
	ruleIntent, _ := r.rules.Extract(ctx, q)

	remote, provider := r.raceRemotes(ctx, q)
	merged := ruleIntent
	winner := r.rules.Name()
	if remote != nil {
		// Remote fields win; rules fill what the model left empty
		remote.Merge(ruleIntent)
		merged = remote
		winner = provider
	}

	// A query with flight intent but no stated direction asks about
	// departures far more often than arrivals
	if !merged.Empty() && merged.Direction == "" {
		merged.Direction = model.DirectionDeparture
	}
	return merged, winner
}

// raceRemotes fans out to every configured remote and takes the first
// non-empty answer. Returns nil when none answers inside the timeout.
func (r *Racer) raceRemotes(ctx context.Context, q Query) (*model.Intent, string) {
	if len(r.remotes) == 0 {
		return nil, ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(chan remoteResult, len(r.remotes))
	for _, ex := range r.remotes {
		go func(ex Extractor) {
			intent, err := ex.Extract(ctx, q)
			if err != nil {
				r.log.Debug("remote intent extraction failed",
					"provider", ex.Name(), "error", err)
				results <- remoteResult{}
				return
			}
			results <- remoteResult{intent: intent, provider: ex.Name()}
		}(ex)
	}

	for i := 0; i < len(r.remotes); i++ {
		select {
		case res := <-results:
			if res.intent != nil && !res.intent.Empty() {
				return res.intent, res.provider
			}
		case <-ctx.Done():
			return nil, ""
		}
	}
	return nil, ""
}
