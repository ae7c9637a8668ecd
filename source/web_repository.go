package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qchem-tools/go-deck-config/deck"
)

// WebRepository is a struct that implements the Repository interface for
// handling an input deck fetched from a remote HTTP endpoint, e.g. a
// deck published by CI to a raw-file host.
type WebRepository struct {
	sync.RWMutex          // RWMutex to synchronize access to data during refresh
	Name         string   // Name of the deck source
	URL          *url.URL // URL of the remote deck
	APIKey       string   // Optional API key for X-API-Key header authentication
	parsed       *deck.Deck
	data         map[string]interface{}
	rawData      []byte
}

// GetName returns the name of the deck source.
func (w *WebRepository) GetName() string {
	return w.Name
}

// GetData returns the value of a single deck parameter.
func (w *WebRepository) GetData(name string) (value interface{}, isPresent bool) {
	w.RLock()
	defer w.RUnlock()
	value, isPresent = w.data[name]
	return value, isPresent
}

// GetDeck returns the last successfully parsed deck.
func (w *WebRepository) GetDeck() *deck.Deck {
	w.RLock()
	defer w.RUnlock()
	return w.parsed
}

// GetRawData returns the raw bytes of the input deck.
func (w *WebRepository) GetRawData() []byte {
	w.RLock()
	defer w.RUnlock()
	return w.rawData
}

// Refresh fetches the deck from the remote HTTP endpoint and parses
// it into the data map.
func (w *WebRepository) Refresh() error {
	ctx := context.Background()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL.String(), nil)
	if err != nil {
		logrus.Debug("error creating request")
		return err
	}

	// Set X-API-Key header if an API key is configured.
	if w.APIKey != "" {
		request.Header.Set("X-API-Key", w.APIKey)
	}

	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		logrus.Debug("error doing request")
		return err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logrus.WithError(err).Debug("error closing response body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", w.URL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logrus.Debug("error reading response body")
		return err
	}

	// Parse outside the lock so readers keep the previous deck on error.
	parsed, err := deck.ParseBytes(raw)
	if err != nil {
		logrus.WithError(err).Debug("error parsing deck")
		return err
	}
	warnIssues(w.Name, parsed)

	// Only lock for the atomic data swap.
	w.Lock()
	w.parsed = parsed
	w.data = parsed.Map()
	w.rawData = raw
	w.Unlock()

	return nil
}
