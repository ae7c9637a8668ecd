package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/qchem-tools/go-deck-config/deck"
)

// AwsS3Repository is a struct that implements the Repository interface for
// handling an input deck staged to an S3 bucket, typically by the CI
// pipeline that owns the calculation inputs.
type AwsS3Repository struct {
	sync.RWMutex             // RWMutex to synchronize access to data during refresh
	Name          string     // Name of the deck source
	BucketName    string     // Name of the S3 bucket
	ObjectName    string     // Key of the deck file within the bucket
	Region        string     // AWS region, empty for the default chain
	Endpoint      string     // Optional custom endpoint for an S3-compatible store
	AccessKeyID   string     // Optional static credentials, e.g. for an S3-compatible store
	SecretKey     string     // Secret half of the static credentials
	Client        *s3.Client // S3 client instance, injectable for tests
	parsed        *deck.Deck
	data          map[string]interface{}
	rawData       []byte
	clientOnce    sync.Once // Ensures the client is initialized only once
	clientInitErr error     // Stores error from client initialization
}

// GetName returns the name of the deck source.
func (a *AwsS3Repository) GetName() string {
	return a.Name
}

// GetData returns the value of a single deck parameter.
func (a *AwsS3Repository) GetData(name string) (value interface{}, isPresent bool) {
	a.RLock()
	defer a.RUnlock()
	value, isPresent = a.data[name]
	return value, isPresent
}

// GetDeck returns the last successfully parsed deck.
func (a *AwsS3Repository) GetDeck() *deck.Deck {
	a.RLock()
	defer a.RUnlock()
	return a.parsed
}

// GetRawData returns the raw bytes of the input deck.
func (a *AwsS3Repository) GetRawData() []byte {
	a.RLock()
	defer a.RUnlock()
	return a.rawData
}

// Refresh reads the deck file from the S3 bucket and parses it into
// the data map.
func (a *AwsS3Repository) Refresh() error {
	ctx := context.Background()

	// Thread-safe client initialization (only if a client was not
	// pre-configured).
	if a.Client == nil {
		a.clientOnce.Do(func() {
			var opts []func(*awsconfig.LoadOptions) error
			if a.Region != "" {
				opts = append(opts, awsconfig.WithRegion(a.Region))
			}
			if a.AccessKeyID != "" {
				opts = append(opts, awsconfig.WithCredentialsProvider(
					credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretKey, "")))
			}
			cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
			if err != nil {
				a.clientInitErr = fmt.Errorf("failed to load AWS config: %w", err)
				return
			}
			a.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
				if a.Endpoint != "" {
					// S3-compatible stores expect path-style addressing.
					o.BaseEndpoint = aws.String(a.Endpoint)
					o.UsePathStyle = true
				}
			})
		})
		if a.clientInitErr != nil {
			return a.clientInitErr
		}
	}

	// Network I/O and parsing happen outside the lock.
	result, err := a.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.BucketName),
		Key:    aws.String(a.ObjectName),
	})
	if err != nil {
		return err
	}
	defer result.Body.Close()

	raw, err := io.ReadAll(result.Body)
	if err != nil {
		return err
	}

	parsed, err := deck.ParseBytes(raw)
	if err != nil {
		logrus.WithError(err).Debug("error parsing deck")
		return err
	}
	warnIssues(a.Name, parsed)

	// Only lock for the atomic data swap.
	a.Lock()
	a.parsed = parsed
	a.data = parsed.Map()
	a.rawData = raw
	a.Unlock()

	return nil
}
