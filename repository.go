package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/qchem-tools/go-deck-config/source"
)

// NewRepository builds a deck source from the command-line flags.
// An unknown type falls back to the local file backend.
func NewRepository(repoType string) (source.Repository, error) {
	switch repoType {
	case "git":
		if *path == "" {
			return nil, errors.New("path is required")
		}
		if *URL == "" {
			return nil, errors.New("url is required")
		}
		parsed, err := url.Parse(*URL)
		if err != nil {
			return nil, fmt.Errorf("parsing url: %w", err)
		}
		return &source.GitRepository{Name: *name, URL: parsed, Path: *path, Branch: *branch}, nil
	case "http":
		if *URL == "" {
			return nil, errors.New("url is required")
		}
		parsed, err := url.Parse(*URL)
		if err != nil {
			return nil, fmt.Errorf("parsing url: %w", err)
		}
		return &source.WebRepository{Name: *name, URL: parsed}, nil
	case "s3":
		if *bucket == "" || *object == "" {
			return nil, errors.New("bucket and object are required")
		}
		return &source.AwsS3Repository{Name: *name, BucketName: *bucket, ObjectName: *object, Region: *region}, nil
	case "gcs":
		if *bucket == "" || *object == "" {
			return nil, errors.New("bucket and object are required")
		}
		return &source.GcpStorageRepository{Name: *name, BucketName: *bucket, ObjectName: *object}, nil
	case "fs":
		fallthrough
	default:
		if *path == "" {
			return nil, errors.New("path is required")
		}
		return &source.FileRepository{Name: *name, Path: *path}, nil
	}
}
