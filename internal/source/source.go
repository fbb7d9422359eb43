// Package source defines the connector contract and the built-in RSS
// connector. A connector adapts one external provider into the canonical
// Article shape; provider-level failures surface as ErrSourceUnavailable and
// are handled by the orchestrator without aborting the run.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// ErrSourceUnavailable marks a provider-level fetch failure. Connectors wrap
// it so callers can test with errors.Is.
var ErrSourceUnavailable = errors.New("source unavailable")

// Connector fetches candidate articles from one provider for a time window.
// A call re-fetches from scratch; the returned slice is finite and owned by
// the caller. Single malformed items are skipped and logged, never fatal.
type Connector interface {
	ID() string
	Fetch(ctx context.Context, window newsletter.TimeRange) ([]newsletter.Article, error)
}

func unavailable(sourceID string, err error) error {
	return fmt.Errorf("source %s: %w: %v", sourceID, ErrSourceUnavailable, err)
}
