package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrCapabilityUnavailable indicates neither the remote engine bundle nor the
// bundled fallback could provide a working engine. No render can proceed in
// this state.
var ErrCapabilityUnavailable = errors.New("document generation capability unavailable")

// maxBundleBytes caps the size of a downloaded engine bundle.
const maxBundleBytes = 16 << 20

// ProviderConfig configures engine acquisition.
type ProviderConfig struct {
	// BundleURL is the primary source: a document-shaped archive whose parts
	// seed the scaffold. Empty disables the remote path and the provider goes
	// straight to the bundled fallback.
	BundleURL    string
	FetchTimeout time.Duration
	Client       *http.Client
}

// Provider lazily acquires the document engine. Acquisition happens at most
// once per process: concurrent callers share one in-flight fetch and the
// result is cached for the remainder of the process lifetime.
type Provider struct {
	cfg    ProviderConfig
	client *http.Client
	logger zerolog.Logger

	group  singleflight.Group
	cached atomic.Pointer[Engine]
}

// NewProvider constructs an engine provider.
func NewProvider(cfg ProviderConfig, logger zerolog.Logger) *Provider {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "docx_provider").Logger(),
	}
}

// Acquire returns the process-wide engine, fetching it on first use. The
// remote bundle is preferred; on failure the bundled fallback scaffold is
// used. Only when both fail does Acquire report ErrCapabilityUnavailable.
func (p *Provider) Acquire(ctx context.Context) (*Engine, error) {
	if engine := p.cached.Load(); engine != nil {
		return engine, nil
	}

	result, err, _ := p.group.Do("engine", func() (interface{}, error) {
		if engine := p.cached.Load(); engine != nil {
			return engine, nil
		}

		engine, err := p.acquire(ctx)
		if err != nil {
			return nil, err
		}

		p.cached.Store(engine)
		return engine, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Engine), nil
}

func (p *Provider) acquire(ctx context.Context) (*Engine, error) {
	var fetchErr error
	if p.cfg.BundleURL != "" {
		engine, err := p.fetchRemote(ctx)
		if err == nil {
			p.logger.Info().Str("source", "remote").Msg("document engine acquired")
			return engine, nil
		}
		fetchErr = err
		p.logger.Warn().Err(err).Msg("remote engine bundle unavailable, using bundled fallback")
	}

	engine, err := NewEngine(DefaultScaffold())
	if err != nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("%w: remote: %v; fallback: %v", ErrCapabilityUnavailable, fetchErr, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}

	p.logger.Info().Str("source", "fallback").Msg("document engine acquired")
	return engine, nil
}

// fetchRemote downloads the engine bundle and extracts the scaffold parts.
// The fetch runs on a detached timeout so one caller's cancellation cannot
// poison the shared single-flight result.
func (p *Provider) fetchRemote(ctx context.Context) (*Engine, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, p.cfg.BundleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building bundle request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching engine bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine bundle fetch returned status %d", resp.StatusCode)
	}

	bundle, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading engine bundle: %w", err)
	}
	if len(bundle) > maxBundleBytes {
		return nil, fmt.Errorf("engine bundle exceeds %d bytes", maxBundleBytes)
	}

	scaffold, err := scaffoldFromBundle(bundle)
	if err != nil {
		return nil, err
	}

	return NewEngine(scaffold)
}

// scaffoldFromBundle extracts scaffold parts from a document-shaped archive.
// Parts the bundle does not carry fall back to their bundled defaults.
func scaffoldFromBundle(bundle []byte) (Scaffold, error) {
	reader, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return Scaffold{}, fmt.Errorf("engine bundle is not a readable archive: %w", err)
	}

	scaffold := DefaultScaffold()
	found := false
	for _, file := range reader.File {
		var target *[]byte
		switch file.Name {
		case "[Content_Types].xml":
			target = &scaffold.ContentTypes
		case "_rels/.rels":
			target = &scaffold.Rels
		case "word/_rels/document.xml.rels":
			target = &scaffold.DocumentRels
		case "word/styles.xml":
			target = &scaffold.Styles
		default:
			continue
		}

		part, err := readPart(file)
		if err != nil {
			return Scaffold{}, fmt.Errorf("reading bundle part %s: %w", file.Name, err)
		}
		*target = part
		found = true
	}

	if !found {
		return Scaffold{}, fmt.Errorf("engine bundle carries no scaffold parts")
	}

	return scaffold, nil
}
