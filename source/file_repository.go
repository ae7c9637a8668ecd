package source

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qchem-tools/go-deck-config/deck"
)

// FileRepository is a struct that implements the Repository interface for
// handling an input deck stored in a local file. This is the one-shot
// read: jobs that run next to their deck use this backend.
type FileRepository struct {
	sync.RWMutex         // RWMutex to synchronize access to data during refresh
	Name         string  // Name of the deck source
	Path         string  // File path of the input deck
	parsed       *deck.Deck
	data         map[string]interface{}
	rawData      []byte
}

// GetName returns the name of the deck source.
func (f *FileRepository) GetName() string {
	return f.Name
}

// GetData returns the value of a single deck parameter.
func (f *FileRepository) GetData(name string) (value interface{}, isPresent bool) {
	f.RLock()
	defer f.RUnlock()
	value, isPresent = f.data[name]
	return value, isPresent
}

// GetDeck returns the last successfully parsed deck.
func (f *FileRepository) GetDeck() *deck.Deck {
	f.RLock()
	defer f.RUnlock()
	return f.parsed
}

// GetRawData returns the raw bytes of the input deck.
func (f *FileRepository) GetRawData() []byte {
	f.RLock()
	defer f.RUnlock()
	return f.rawData
}

// Refresh reads the deck file and parses it into the data map.
func (f *FileRepository) Refresh() error {
	// Read and parse outside the lock so readers keep the previous
	// deck while a refresh is in flight.
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		logrus.WithError(err).Debug("error reading deck file")
		return err
	}

	parsed, err := deck.ParseBytes(raw)
	if err != nil {
		logrus.WithError(err).Debug("error parsing deck file")
		return err
	}
	warnIssues(f.Name, parsed)

	// Only lock for the atomic data swap.
	f.Lock()
	f.parsed = parsed
	f.data = parsed.Map()
	f.rawData = raw
	f.Unlock()

	return nil
}

// warnIssues logs schema findings for a freshly parsed deck. Issues
// are advisory and never fail a refresh.
func warnIssues(name string, d *deck.Deck) {
	for _, issue := range deck.Validate(d) {
		logrus.WithFields(logrus.Fields{
			"source":    name,
			"parameter": issue.Name,
		}).Warn(issue.Reason)
	}
}
