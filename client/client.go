// Package client embeds deck access into a Go process: it keeps a
// repository fresh in the background and exposes typed parameter
// getters to the calculation driver.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/qchem-tools/go-deck-config/source"
)

var ErrNotFound = errors.New("parameter not found")

type Client struct {
	Repository      source.Repository
	RefreshInterval time.Duration
	cancel          context.CancelFunc
}

// NewClient creates a new Client with the provided context, repository,
// and refresh interval. The repository is refreshed once before the
// Client is returned, so a deck that cannot be fetched or parsed is
// reported up front rather than surfacing as missing parameters later.
// A background goroutine then refreshes the deck periodically.
func NewClient(ctx context.Context, repository source.Repository, refreshInterval time.Duration) (*Client, error) {
	ctx, cancel := context.WithCancel(ctx)

	client := &Client{
		Repository:      repository,
		RefreshInterval: refreshInterval,
		cancel:          cancel,
	}

	// Refresh the deck for the first time so the Client is usable
	// immediately after construction.
	if err := client.Repository.Refresh(); err != nil {
		cancel()
		return nil, fmt.Errorf("initial refresh: %w", err)
	}

	go refresh(ctx, client)

	return client, nil
}

// refresh is a goroutine that periodically refreshes the deck from the
// repository based on the provided refresh interval. It stops when the
// given context is canceled.
func refresh(ctx context.Context, client *Client) {
	ticker := time.NewTicker(client.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := client.Repository.Refresh()
			if err != nil {
				logrus.WithError(err).Error("error refreshing repository")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the background refresh goroutine of the Client by
// canceling its associated context. It should be called when the
// Client is no longer needed to prevent a goroutine leak.
func (c *Client) Close() {
	c.cancel()
}

// GetConfig retrieves the parameter with the given name and stores it
// in the provided pointer, going through a yaml round trip so the
// caller can target any compatible scalar type (int, int32, float64,
// string, ...).
func (c *Client) GetConfig(name string, data interface{}) error {
	value, ok := c.Repository.GetData(name)
	if !ok {
		return ErrNotFound
	}

	marshal, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(marshal, data)
}

// GetString retrieves the parameter with the given name as its raw
// text. Every deck value has a textual form, so this succeeds for any
// present parameter.
func (c *Client) GetString(name string) (string, error) {
	d := c.Repository.GetDeck()
	if d == nil {
		return "", ErrNotFound
	}
	v, ok := d.Lookup(name)
	if !ok {
		return "", ErrNotFound
	}
	return v.Raw(), nil
}

// GetInt retrieves the parameter with the given name as an integer.
// Float values do not truncate.
func (c *Client) GetInt(name string) (int64, error) {
	d := c.Repository.GetDeck()
	if d == nil {
		return 0, ErrNotFound
	}
	v, ok := d.Lookup(name)
	if !ok {
		return 0, ErrNotFound
	}
	i, ok := v.Int()
	if !ok {
		return 0, fmt.Errorf("parameter %q is not an integer", name)
	}
	return i, nil
}

// GetFloat retrieves the parameter with the given name as a float.
// Integer values are promoted.
func (c *Client) GetFloat(name string) (float64, error) {
	d := c.Repository.GetDeck()
	if d == nil {
		return 0, ErrNotFound
	}
	v, ok := d.Lookup(name)
	if !ok {
		return 0, ErrNotFound
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("parameter %q is not numeric", name)
	}
	return f, nil
}
