package source

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/sirupsen/logrus"

	"github.com/qchem-tools/go-deck-config/deck"
)

// GitRepository is a struct that implements the Repository interface for
// handling an input deck versioned in a git repository, cloned into an
// in-memory filesystem and pulled on refresh. Hosted-forge rate limits
// apply to every pull; for frequently polled decks prefer having CI
// push the file to an S3/GCS bucket and using that backend instead.
type GitRepository struct {
	sync.RWMutex                   // RWMutex to synchronize access to data during refresh
	Name          string           // Name of the deck source
	URL           *url.URL         // URL of the git repository
	Path          string           // Path to the deck file within the repository
	Branch        string           // Branch to check out when cloning
	Auth          *http.BasicAuth  // BasicAuth to use when cloning and pulling
	gitRepository *git.Repository  // go-git repository instance for the in-memory clone
	fs            billy.Filesystem // Filesystem holding the in-memory clone
	parsed        *deck.Deck
	data          map[string]interface{}
	rawData       []byte
}

// GetName returns the name of the deck source.
func (g *GitRepository) GetName() string {
	return g.Name
}

// GetData returns the value of a single deck parameter.
func (g *GitRepository) GetData(name string) (value interface{}, isPresent bool) {
	g.RLock()
	defer g.RUnlock()
	value, isPresent = g.data[name]
	return value, isPresent
}

// GetDeck returns the last successfully parsed deck.
func (g *GitRepository) GetDeck() *deck.Deck {
	g.RLock()
	defer g.RUnlock()
	return g.parsed
}

// GetRawData returns the raw bytes of the input deck.
func (g *GitRepository) GetRawData() []byte {
	g.RLock()
	defer g.RUnlock()
	return g.rawData
}

// Refresh clones or pulls the git repository and parses the deck file
// into the data map.
func (g *GitRepository) Refresh() error {
	raw, err := g.fetch()
	if err != nil {
		return err
	}

	parsed, err := deck.ParseBytes(raw)
	if err != nil {
		logrus.WithError(err).Debug("error parsing deck")
		return err
	}
	warnIssues(g.Name, parsed)

	g.Lock()
	g.parsed = parsed
	g.data = parsed.Map()
	g.rawData = raw
	g.Unlock()

	return nil
}

// fetch clones the repository on first use, pulls afterwards, and
// reads the deck file from the in-memory worktree.
func (g *GitRepository) fetch() ([]byte, error) {
	if g.fs == nil {
		g.fs = memfs.New()
		logrus.Debugf("Cloning %s into memory", g.URL.String())
		r, err := git.CloneContext(context.Background(), memory.NewStorage(), g.fs, &git.CloneOptions{
			URL:  g.URL.String(),
			Auth: g.Auth,
		})
		if err != nil {
			g.fs = nil
			return nil, err
		}

		if g.Branch != "" {
			w, err := r.Worktree()
			if err != nil {
				return nil, err
			}

			err = r.Fetch(&git.FetchOptions{
				RefSpecs: []config.RefSpec{"refs/*:refs/*", "HEAD:refs/heads/HEAD"},
			})
			if err != nil && err != git.NoErrAlreadyUpToDate {
				return nil, err
			}

			err = w.Checkout(&git.CheckoutOptions{
				Branch: plumbing.NewBranchReferenceName(g.Branch),
				Force:  true,
			})
			if err != nil {
				return nil, err
			}
		}

		logrus.Debug("Cloned")
		g.gitRepository = r
	} else {
		w, err := g.gitRepository.Worktree()
		if err != nil {
			return nil, err
		}
		logrus.Debug("Pulling")

		pullOptions := &git.PullOptions{
			Auth: g.Auth,
		}
		if g.Branch != "" {
			pullOptions = &git.PullOptions{
				ReferenceName: plumbing.NewBranchReferenceName(g.Branch),
				Force:         true,
				SingleBranch:  true,
				Auth:          g.Auth,
			}
		}

		err = w.PullContext(context.Background(), pullOptions)
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return nil, err
		}
		if err == git.NoErrAlreadyUpToDate {
			logrus.Debug("Already up to date")
		} else {
			logrus.Debug("Pulled")
		}
	}

	file, err := g.fs.Open(g.Path)
	if err != nil {
		return nil, err
	}
	defer func(file billy.File) {
		err := file.Close()
		if err != nil {
			logrus.WithError(err).Error("error closing file")
		}
	}(file)

	return io.ReadAll(file)
}
