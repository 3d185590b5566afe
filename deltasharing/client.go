// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deltasharing loads Delta Sharing tables into DataSources:
// profile detection, catalog listing and table loading with optional
// column projection and row limiting.
package deltasharing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	arrowadapter "github.com/magpierre/filtertable/adapters/arrow"
)

// Config controls client behavior.
type Config struct {
	// TimeoutSeconds bounds each Delta Sharing API call.
	// Values <= 0 use the 60 second default.
	TimeoutSeconds int
}

// DefaultConfig returns a client config with a 60 second API timeout.
func DefaultConfig() Config {
	return Config{TimeoutSeconds: 60}
}

// IsProfile checks if the content looks like a Delta Sharing profile.
func IsProfile(content string) bool {
	// A profile has shareCredentialsVersion, endpoint and bearerToken.
	var profile map[string]interface{}
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return false
	}

	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]

	return hasVersion && hasEndpoint && hasBearerToken
}

// Client wraps a Delta Sharing connection for catalog and table access.
type Client struct {
	ds      delta_sharing.SharingClientV2
	timeout int
}

// NewClientFromProfile creates a client from a profile document (the JSON
// content, not a path).
func NewClientFromProfile(profile string, config Config) (*Client, error) {
	ds, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	return &Client{ds: ds, timeout: config.TimeoutSeconds}, nil
}

// timeoutContext creates a context bounding one Delta Sharing API call.
func (c *Client) timeoutContext() (context.Context, context.CancelFunc) {
	seconds := c.timeout
	if seconds <= 0 {
		seconds = 60
	}
	return context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
}

// Shares lists the shares visible to this client.
func (c *Client) Shares() ([]delta_sharing.Share, error) {
	ctx, cancel := c.timeoutContext()
	defer cancel()
	shares, _, err := c.ds.ListShares(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

// Tables lists every table across all shares and schemas.
func (c *Client) Tables() ([]delta_sharing.Table, error) {
	ctx, cancel := c.timeoutContext()
	defer cancel()
	// maxConcurrency=0 uses the client default (10).
	tables, _, err := c.ds.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

// Files lists the data file ids backing a table.
func (c *Client) Files(table delta_sharing.Table) ([]string, error) {
	ctx, cancel := c.timeoutContext()
	defer cancel()
	resp, err := c.ds.ListFilesInTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in table: %w", err)
	}
	ids := make([]string, len(resp.AddFiles))
	for i, f := range resp.AddFiles {
		ids[i] = f.Id
	}
	return ids, nil
}

// LoadTable fetches one data file of a table as an Arrow-backed
// DataSource, applying options (column projection, row limit) when given.
func (c *Client) LoadTable(table delta_sharing.Table, fileID string, options *QueryOptions) (*arrowadapter.Source, error) {
	ctx, cancel := c.timeoutContext()
	defer cancel()

	original, err := delta_sharing.LoadArrowTable(ctx, c.ds, table, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", table.Name, err)
	}
	defer original.Release()

	arrowTable := original
	if options != nil {
		arrowTable, err = ApplyQueryOptions(original, options)
		if err != nil {
			return nil, fmt.Errorf("failed to apply query options: %w", err)
		}
		if arrowTable != original {
			defer arrowTable.Release()
		}
	}

	return arrowadapter.NewFromArrowTable(arrowTable)
}
