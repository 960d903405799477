// Package hollow is the embedder-facing entry point: construct a
// Client, feed it update plans as new snapshot/delta blobs become
// available, and read through the handle returned by ReadAPI.
package hollow

import (
	"context"
	"fmt"

	"github.com/iamNilotpal/hollow/internal/consumer"
	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blobsource"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/logger"
	"github.com/iamNilotpal/hollow/pkg/options"
)

// Client is the primary entry point for embedding this dataset engine:
// it owns the read state engine, the update driver, the memory
// recycler, and the local blob source, and exposes the update/read/
// listener surface described by the driver/consumer interfaces.
type Client struct {
	opts   options.Options
	engine *engine.Engine
	driver *consumer.Driver
	pool   *recycler.Recycler
	filter *filter.Config
	source *blobsource.Source
}

// New constructs a Client for the given service name (used to scope its
// logger), applying any supplied functional options over the defaults.
func New(service string, opts ...options.OptionFunc) (*Client, error) {
	log := logger.New(service)

	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	pool := recycler.New(cfg.Array.RecyclerPoolSize)
	eng := engine.New(log)
	filterCfg := filter.New()

	src, err := blobsource.New(cfg.DataDir, cfg.BlobOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob source: %w", err)
	}

	c := &Client{opts: cfg, engine: eng, pool: pool, filter: filterCfg, source: src}

	c.driver = consumer.New(consumer.Config{
		Engine:         eng,
		Pool:           pool,
		Filter:         filterCfg,
		Logger:         log,
		DoubleSnapshot: cfg.DoubleSnapshot,
		Longevity:      cfg.ObjectLongevity,
		MemoryMode:     cfg.MemoryMode,
		DumpBlobLayout: cfg.Debug.DumpBlobLayout,
		MintAPI:        func(eng *engine.Engine, version uint64) any { return c.mintAPI(eng, version) },
	})

	return c, nil
}

// mintAPI builds a ReadAPI over eng's state as of version and registers it
// with the driver's stale-reference detector. Shared by ReadAPI and the
// driver's listener-notification MintAPI hook so both paths produce the
// same kind of handle.
func (c *Client) mintAPI(eng *engine.Engine, version uint64) *ReadAPI {
	api := &ReadAPI{engine: eng, version: version}
	consumer.ObserveAPIHandle(c.driver, api)
	return api
}

// Filter returns the client's include/exclude configuration, mutable
// before the first Update call.
func (c *Client) Filter() *filter.Config { return c.filter }

// CurrentVersion returns the destination version of the last
// successfully applied update plan.
func (c *Client) CurrentVersion() uint64 { return c.driver.CurrentVersion() }

// RegisterListener wires l into the driver's listener fanout.
func (c *Client) RegisterListener(l any) { c.driver.RegisterListener(l) }

// ReadAPI mints a new read handle over the engine's current generation
// and registers it with the stale-reference detector.
func (c *Client) ReadAPI() *ReadAPI {
	return c.mintAPI(c.engine, c.driver.CurrentVersion())
}

// Update discovers and applies whatever snapshot/delta blobs are needed
// to reach destVersion: if no snapshot has ever been applied, or the
// engine is in a poisoned Failed state under double-snapshot
// configuration, the latest available snapshot is used as the plan's
// base; otherwise only the deltas strictly after the current version are
// applied.
func (c *Client) Update(ctx context.Context, destVersion uint64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	plan, err := c.buildPlan(destVersion)
	if err != nil {
		return err
	}
	return c.driver.Update(plan)
}

func (c *Client) buildPlan(destVersion uint64) (*consumer.Plan, error) {
	needsSnapshot := c.driver.CurrentVersion() == 0 ||
		(c.opts.DoubleSnapshot.Allow && c.driver.State() == consumer.StateFailed)

	plan := &consumer.Plan{DestinationVersion: destVersion}

	if needsSnapshot {
		entry, err := c.source.LatestSnapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to discover latest snapshot: %w", err)
		}
		if entry == nil {
			return nil, fmt.Errorf("no snapshot blob is available in %s", c.opts.DataDir)
		}
		snapBlob, err := c.source.Open(*entry)
		if err != nil {
			return nil, err
		}
		plan.Snapshot = snapBlob

		deltas, err := c.source.DeltasAfter(entry.Version)
		if err != nil {
			return nil, err
		}
		if err := openDeltasUpTo(c.source, deltas, destVersion, plan); err != nil {
			return nil, err
		}
		return plan, nil
	}

	deltas, err := c.source.DeltasAfter(c.driver.CurrentVersion())
	if err != nil {
		return nil, err
	}
	if err := openDeltasUpTo(c.source, deltas, destVersion, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func openDeltasUpTo(src *blobsource.Source, deltas []blobsource.Entry, destVersion uint64, plan *consumer.Plan) error {
	for _, e := range deltas {
		if e.Version > destVersion {
			break
		}
		b, err := src.Open(e)
		if err != nil {
			return err
		}
		plan.Deltas = append(plan.Deltas, b)
	}
	return nil
}

// Close destroys the engine's type states, releasing every mmap handle
// reference and recycler buffer they hold. The blobs opened for update
// plans are not closed by the client, here or elsewhere.
func (c *Client) Close() error {
	c.engine.Reset()
	return nil
}
