// Command go-deck-config serves quantum-chemistry input decks from a
// file, HTTP, git, S3 or GCS source to the compute jobs that consume
// them.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qchem-tools/go-deck-config/server"
	"github.com/qchem-tools/go-deck-config/source"
)

var (
	addr            = flag.String("addr", ":8080", "listen address for the server")
	authKey         = flag.String("auth_key", "", "auth key for the server, empty disables auth")
	refreshInterval = flag.Duration("refresh_interval", 30*time.Second, "how often to re-fetch the deck")
	logLevel        = flag.String("log_level", "info", "logrus level: debug, info, warn, error")

	name     = flag.String("name", "deck", "name of the deck source, used as its route")
	repoType = flag.String("repo_type", "", "repository type: fs, git, http, s3, gcs")
	path     = flag.String("path", "", "path to the deck file (fs, git)")
	URL      = flag.String("url", "", "url of the deck (http) or of the git repository")
	branch   = flag.String("branch", "", "git branch to check out")
	bucket   = flag.String("bucket", "", "bucket name (s3, gcs)")
	object   = flag.String("object", "", "object key of the deck within the bucket (s3, gcs)")
	region   = flag.String("region", "", "AWS region (s3)")
)

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)

	repository, err := NewRepository(*repoType)
	if err != nil {
		logrus.WithError(err).Fatal("error creating repository")
	}

	srv := server.NewServer(context.Background(), []source.Repository{repository}, *refreshInterval)
	srv.AuthKey = *authKey
	if err := srv.Start(*addr); err != nil {
		logrus.WithError(err).Fatal("error starting server")
	}
}
