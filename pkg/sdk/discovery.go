package sdk

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/engine"
)

// Options selects and configures a store. A non-empty Addr selects the
// remote daemon; DataDir is used for the embedded fallback.
type Options struct {
	Addr       string
	DisableTLS bool
	DataDir    string
	Logger     zerolog.Logger
}

// New initializes the store based on the environment.
// It returns the Interface, so the app doesn't care if it's local or remote.
func New(dataDir string) (AdminStore, error) {
	return Open(Options{
		Addr:       os.Getenv("CELERIX_STORE_ADDR"),
		DisableTLS: os.Getenv("CELERIX_DISABLE_TLS") == "true",
		DataDir:    dataDir,
		Logger:     zerolog.Nop(),
	})
}

// Open connects to opts.Addr when set and reachable, otherwise falls back to
// an embedded catalog over opts.DataDir.
func Open(opts Options) (AdminStore, error) {
	if opts.Addr != "" {
		client, err := Dial(opts)
		if err == nil {
			return client, nil
		}
		opts.Logger.Warn().Err(err).Str("addr", opts.Addr).Msg("remote store unreachable, using embedded catalog")
	}

	// This uses the same engine the daemon uses, but inside the app process.
	p, err := engine.NewPersistence(opts.DataDir, opts.Logger)
	if err != nil {
		return nil, err
	}
	return engine.Open(p, opts.Logger)
}
