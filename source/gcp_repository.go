package source

import (
	"context"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/qchem-tools/go-deck-config/deck"
)

// GcpStorageRepository is a struct that implements the Repository
// interface for handling an input deck staged to a GCS bucket.
type GcpStorageRepository struct {
	sync.RWMutex                  // RWMutex to synchronize access to data during refresh
	Name          string          // Name of the deck source
	BucketName    string          // Name of the GCS bucket
	ObjectName    string          // Name of the deck file within the bucket
	Anonymous     bool            // Skip authentication, for public buckets
	Client        *storage.Client // GCS client instance, injectable for tests and emulators
	parsed        *deck.Deck
	data          map[string]interface{}
	rawData       []byte
	clientOnce    sync.Once // Ensures the client is initialized only once
	clientInitErr error     // Stores error from client initialization
}

// GetName returns the name of the deck source.
func (g *GcpStorageRepository) GetName() string {
	return g.Name
}

// GetData returns the value of a single deck parameter.
func (g *GcpStorageRepository) GetData(name string) (value interface{}, isPresent bool) {
	g.RLock()
	defer g.RUnlock()
	value, isPresent = g.data[name]
	return value, isPresent
}

// GetDeck returns the last successfully parsed deck.
func (g *GcpStorageRepository) GetDeck() *deck.Deck {
	g.RLock()
	defer g.RUnlock()
	return g.parsed
}

// GetRawData returns the raw bytes of the input deck.
func (g *GcpStorageRepository) GetRawData() []byte {
	g.RLock()
	defer g.RUnlock()
	return g.rawData
}

// Refresh reads the deck file from the GCS bucket and parses it into
// the data map.
func (g *GcpStorageRepository) Refresh() error {
	ctx := context.Background()

	// Thread-safe client initialization (only if a client was not
	// pre-configured).
	if g.Client == nil {
		g.clientOnce.Do(func() {
			var opts []option.ClientOption
			if g.Anonymous {
				opts = append(opts, option.WithoutAuthentication())
			}
			g.Client, g.clientInitErr = storage.NewClient(ctx, opts...)
		})
		if g.clientInitErr != nil {
			return g.clientInitErr
		}
	}

	// Network I/O and parsing happen outside the lock.
	bucket := g.Client.Bucket(g.BucketName)
	obj := bucket.Object(g.ObjectName)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return err
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	parsed, err := deck.ParseBytes(raw)
	if err != nil {
		logrus.WithError(err).Debug("error parsing deck")
		return err
	}
	warnIssues(g.Name, parsed)

	// Only lock for the atomic data swap.
	g.Lock()
	g.parsed = parsed
	g.data = parsed.Map()
	g.rawData = raw
	g.Unlock()

	return nil
}
