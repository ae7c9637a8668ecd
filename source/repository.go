// Package source provides the repositories an input deck can be
// fetched from: a local file, an HTTP endpoint, a git repository, an
// S3 bucket or a GCS bucket. Every repository parses the deck on
// Refresh and hands out the parsed record; the raw bytes are kept so
// the deck can also be served verbatim.
package source

import (
	"github.com/qchem-tools/go-deck-config/deck"
)

type Repository interface {
	// GetName returns the name of the deck source, used as its HTTP route.
	GetName() string
	// GetData returns the value of a single parameter as int64, float64
	// or string.
	GetData(name string) (value interface{}, isPresent bool)
	// GetDeck returns the last successfully parsed deck, or nil if no
	// refresh has succeeded yet.
	GetDeck() *deck.Deck
	// GetRawData returns the raw bytes of the deck file.
	GetRawData() []byte
	// Refresh fetches and parses the deck. On error the previously
	// parsed deck stays in place.
	Refresh() error
}
