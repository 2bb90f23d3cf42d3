// Package export turns invoices into PDF documents, either in memory or as files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/billbook/internal/domain"
	"github.com/rs/zerolog"
)

// Mode selects where an exported document goes
type Mode int

const (
	// ModeFile writes the document into a directory
	ModeFile Mode = iota
	// ModeBlob returns the document bytes to the caller
	ModeBlob
)

func (m Mode) String() string {
	if m == ModeBlob {
		return "blob"
	}
	return "file"
}

// ParseMode accepts "file" or "blob"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file":
		return ModeFile, nil
	case "blob":
		return ModeBlob, nil
	default:
		return 0, fmt.Errorf("unknown export mode %q (want file or blob)", s)
	}
}

// Request describes one export. Dir is only used in file mode; empty means the
// working directory.
type Request struct {
	Mode Mode
	Dir  string
}

// Result is the outcome of an export. Path is set in file mode, Data in blob mode.
type Result struct {
	Filename string
	Path     string
	Data     []byte
}

// Exporter lays out and renders invoices
type Exporter struct {
	renderer Renderer
	currency string
	log      zerolog.Logger
}

type Option func(*Exporter)

// WithRenderer replaces the PDF renderer
func WithRenderer(r Renderer) Option {
	return func(e *Exporter) { e.renderer = r }
}

// WithCurrency sets the money prefix, "Rs." by default
func WithCurrency(prefix string) Option {
	return func(e *Exporter) { e.currency = prefix }
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// New creates an exporter rendering PDFs
func New(opts ...Option) *Exporter {
	e := &Exporter{
		renderer: NewPDFRenderer(),
		currency: "Rs.",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders inv issued by company. ctx is only checked before rendering starts.
// On error nothing is left in the target directory.
func (e *Exporter) Export(ctx context.Context, inv *domain.Invoice, company domain.CompanyInfo, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := Build(inv, company, e.currency)
	if err != nil {
		return nil, err
	}

	res := &Result{Filename: Filename(inv.ClientSnapshot.Name, inv.Date)}
	log := e.log.With().
		Str("invoice", inv.InvoiceNumber).
		Str("mode", req.Mode.String()).
		Logger()

	switch req.Mode {
	case ModeBlob:
		var buf bytes.Buffer
		if err := e.renderer.Render(&buf, doc); err != nil {
			log.Error().Err(err).Msg("render failed")
			return nil, renderErr(err)
		}
		res.Data = buf.Bytes()
		log.Info().Int("bytes", len(res.Data)).Msg("invoice exported")

	case ModeFile:
		path, err := e.writeFile(req.Dir, res.Filename, doc)
		if err != nil {
			log.Error().Err(err).Msg("export failed")
			return nil, err
		}
		res.Path = path
		log.Info().Str("path", path).Msg("invoice exported")

	default:
		return nil, fmt.Errorf("unknown export mode %d", req.Mode)
	}

	return res, nil
}

// Blob renders inv into memory
func (e *Exporter) Blob(ctx context.Context, inv *domain.Invoice, company domain.CompanyInfo) ([]byte, error) {
	res, err := e.Export(ctx, inv, company, Request{Mode: ModeBlob})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// File renders inv into dir and returns the written path
func (e *Exporter) File(ctx context.Context, dir string, inv *domain.Invoice, company domain.CompanyInfo) (string, error) {
	res, err := e.Export(ctx, inv, company, Request{Mode: ModeFile, Dir: dir})
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// writeFile renders into a temp file next to the target and renames it into place
func (e *Exporter) writeFile(dir, name string, doc *Document) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := e.renderer.Render(tmp, doc); err != nil {
		cleanup()
		return "", renderErr(err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", renderErr(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", renderErr(err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	return path, nil
}

func renderErr(err error) error {
	if errors.Is(err, ErrRender) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRender, err)
}
