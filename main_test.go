package main

import (
	"testing"

	"github.com/qchem-tools/go-deck-config/source"
)

func TestNewRepository(t *testing.T) {
	*path = "testdata/tddft.in"
	*URL = "https://example.com/decks/tddft.in"
	*bucket = "decks"
	*object = "tddft.in"

	// Test the "fs" case
	fsRepo, err := NewRepository("fs")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fsRepo.(*source.FileRepository); !ok {
		t.Errorf("expected *source.FileRepository, got %T", fsRepo)
	}

	// Test the "git" case
	gitRepo, err := NewRepository("git")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gitRepo.(*source.GitRepository); !ok {
		t.Errorf("expected *source.GitRepository, got %T", gitRepo)
	}

	// Test the "http" case
	httpRepo, err := NewRepository("http")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := httpRepo.(*source.WebRepository); !ok {
		t.Errorf("expected *source.WebRepository, got %T", httpRepo)
	}

	// Test the "s3" case
	s3Repo, err := NewRepository("s3")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s3Repo.(*source.AwsS3Repository); !ok {
		t.Errorf("expected *source.AwsS3Repository, got %T", s3Repo)
	}

	// Test the "gcs" case
	gcsRepo, err := NewRepository("gcs")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gcsRepo.(*source.GcpStorageRepository); !ok {
		t.Errorf("expected *source.GcpStorageRepository, got %T", gcsRepo)
	}

	// Test the default case
	defaultRepo, err := NewRepository("invalid")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := defaultRepo.(*source.FileRepository); !ok {
		t.Errorf("expected *source.FileRepository, got %T", defaultRepo)
	}

	*URL = ""
	// Test the "git" case with missing URL
	if _, err = NewRepository("git"); err == nil {
		t.Error("expected error, got nil")
	}

	// Test the "http" case with missing URL
	if _, err = NewRepository("http"); err == nil {
		t.Error("expected error, got nil")
	}

	*bucket = ""
	// Test the "s3" case with missing bucket
	if _, err = NewRepository("s3"); err == nil {
		t.Error("expected error, got nil")
	}

	// Test the "gcs" case with missing bucket
	if _, err = NewRepository("gcs"); err == nil {
		t.Error("expected error, got nil")
	}

	*path = ""
	// Test the "fs" case with missing path
	if _, err = NewRepository("fs"); err == nil {
		t.Error("expected error, got nil")
	}
}
