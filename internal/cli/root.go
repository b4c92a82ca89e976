// Package cli implements the shroud command line: inspecting the catalog,
// editing per-session transform assignments and anonymizing payloads.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/bson"
	"github.com/zoobzio/shroud/datum"
	"github.com/zoobzio/shroud/internal/config"
	"github.com/zoobzio/shroud/internal/store"
	"github.com/zoobzio/shroud/json"
	"github.com/zoobzio/shroud/msgpack"
	"github.com/zoobzio/shroud/yaml"
)

// NewRootCmd builds the shroud command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "shroud",
		Short: "Anonymization-aware serialization for sensed data",
		Long: `shroud manages which anonymization transform applies to each field of
each record kind, persists those choices per session, and serializes
records with the choices applied.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&e.cfgFile, "config", "", "config file (default ./shroud.yaml or ~/shroud.yaml)")
	pf.String(config.KeyDatabase, config.DefaultDatabase, "SQLite database holding session state")
	pf.String(config.KeyCodec, config.DefaultCodec, "wire codec: "+strings.Join(codecNames(), ", "))
	pf.String(config.KeySession, config.DefaultSession, "session id")
	pf.String(config.KeySecret, "", "hex encoded session secret (random when empty)")
	pf.String(config.KeyLogLevel, config.DefaultLogLevel, "log level")

	rootCmd.AddCommand(kindsCmd(e))
	rootCmd.AddCommand(optionsCmd(e))
	rootCmd.AddCommand(assignCmd(e))
	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(auditCmd(e))
	rootCmd.AddCommand(exportCmd(e))
	rootCmd.AddCommand(sessionsCmd(e))

	return rootCmd
}

// env is the per-invocation state shared by subcommands.
type env struct {
	cfgFile string

	cfg   *config.Config
	log   *logrus.Logger
	db    *sql.DB
	store *store.SessionStore
	codec shroud.Codec
	proc  *shroud.Processor
	in    io.Reader
	out   io.Writer
}

// run wraps fn so it executes with an open environment that is closed
// afterwards, whatever fn returns.
func (e *env) run(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer e.close()
		if err := e.open(ctx, cmd); err != nil {
			return err
		}
		return fn(ctx, args)
	}
}

func (e *env) open(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, e.cfgFile)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.in = cmd.InOrStdin()
	e.out = cmd.OutOrStdout()

	e.log, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		e.log.Debugf("using config file %s", cfg.File)
	}

	e.codec, err = codecByName(cfg.Codec)
	if err != nil {
		return err
	}

	secret, err := cfg.SecretBytes()
	if err != nil {
		return err
	}
	if secret == nil {
		e.log.Warn("no session secret configured; keyed transforms will not be reproducible")
	}
	session, err := shroud.NewSession(shroud.WithSessionID(cfg.Session), shroud.WithSecret(secret))
	if err != nil {
		return err
	}

	e.db, err = store.Open(cfg.Database)
	if err != nil {
		return err
	}
	e.store = store.NewSessionStore(e.db)
	e.log.WithField("path", cfg.Database).Debug("opened database")

	cat := datum.Catalog()
	reg, diags, err := e.store.LoadRegistry(ctx, cfg.Session, e.codec, cat)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", cfg.Session, err)
	}
	for _, d := range diags {
		e.log.Warn(d)
	}
	e.log.WithFields(logrus.Fields{"session": cfg.Session, "assignments": reg.Len()}).Debug("loaded session state")

	e.proc, err = shroud.NewProcessor(e.codec, cat, shroud.WithRegistry(reg), shroud.WithSession(session))
	return err
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.WithError(err).Warn("failed to close database")
		}
		e.db = nil
	}
}

// save persists the processor's registry under the configured session.
func (e *env) save(ctx context.Context) error {
	if err := e.store.SaveRegistry(ctx, e.cfg.Session, e.codec, e.proc.Registry()); err != nil {
		return fmt.Errorf("failed to save session %s: %w", e.cfg.Session, err)
	}
	e.log.WithField("session", e.cfg.Session).Debug("saved session state")
	return nil
}

var codecs = map[string]func() shroud.Codec{
	"json":    json.New,
	"yaml":    yaml.New,
	"msgpack": msgpack.New,
	"bson":    bson.New,
}

func codecNames() []string {
	return []string{"json", "yaml", "msgpack", "bson"}
}

func codecByName(name string) (shroud.Codec, error) {
	newCodec, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s\nValid codecs: %s", name, strings.Join(codecNames(), ", "))
	}
	return newCodec(), nil
}

// logFormatter prints "[LEVEL] message key=value ...".
type logFormatter struct {
	logrus.TextFormatter
}

func (f *logFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", entry.Time.Format(time.TimeOnly), strings.ToUpper(entry.Level.String()), entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(new(logFormatter))
	return log, nil
}
