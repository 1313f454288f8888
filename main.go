package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"club-portal/config"
	"club-portal/logging"
	"club-portal/media"
	"club-portal/portal"
	"club-portal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// services is everything a command needs, built from configuration.
type services struct {
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
	store     *storage.Store
}

func bootstrap(ctx context.Context, v *viper.Viper, cfgFile string) (*services, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	logger.WithField("driver", cfg.Storage.Driver).Info("storage opened")

	return &services{
		cfg:       cfg,
		log:       logger,
		logCloser: closer,
		store:     storage.NewStore(backend, logger),
	}, nil
}

func (r *services) newApp() *portal.App {
	return portal.New(r.store,
		portal.WithLogger(r.log),
		portal.WithMessageTTL(r.cfg.Notify.MessageTTL),
		portal.WithReader(media.NewReader(r.cfg.Upload.MaxBytes(), r.cfg.Upload.MaxDimension)),
	)
}

func (r *services) Close() {
	if err := r.store.Close(); err != nil {
		r.log.WithError(err).Warn("close storage")
	}
	r.logCloser.Close()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	// withServices wraps a command body with config loading and cleanup.
	withServices := func(fn func(cmd *cobra.Command, args []string, rt *services) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), v, cfgFile)
			if err != nil {
				return err
			}
			defer rt.Close()
			return fn(cmd, args, rt)
		}
	}

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive portal shell",
		Args:  cobra.NoArgs,
		RunE: withServices(func(cmd *cobra.Command, _ []string, rt *services) error {
			sh := newShell(rt.newApp(), cmd.InOrStdin(), cmd.OutOrStdout())
			return sh.run(cmd.Context())
		}),
	}

	root := &cobra.Command{
		Use:          "clubportal",
		Short:        "MPS Cyber Club portal",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         shellCmd.RunE,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./clubportal.yaml)")
	flags.String("db", "", "SQLite database path")
	flags.String("driver", "", "storage driver: sqlite, redis or memory")
	v.BindPFlag("storage.path", flags.Lookup("db"))
	v.BindPFlag("storage.driver", flags.Lookup("driver"))

	var seedFile string
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite every slot with the seed dataset",
		Args:  cobra.NoArgs,
		RunE: withServices(func(cmd *cobra.Command, _ []string, rt *services) error {
			seed := portal.DefaultSeed()
			if seedFile != "" {
				var err error
				if seed, err = portal.LoadSeedFile(seedFile); err != nil {
					return err
				}
			}
			rt.newApp().Reset(seed)
			fmt.Fprintf(cmd.OutOrStdout(), "Portal data reset (%d users, %d work items, %d events).\n",
				len(seed.Users), len(seed.Work), len(seed.Events))
			return nil
		}),
	}
	resetCmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file (default: built-in dataset)")

	exportCmd := &cobra.Command{
		Use:   "export [slot...]",
		Short: "Print the stored JSON of the given slots (all by default)",
		RunE: withServices(func(cmd *cobra.Command, args []string, rt *services) error {
			return exportSlots(cmd.OutOrStdout(), rt.store, args)
		}),
	}

	root.AddCommand(shellCmd, resetCmd, exportCmd)
	return root
}

// exportSlots writes the named slots as one JSON object keyed by slot.
// Absent slots are reported as null; a slot holding invalid JSON is
// exported as a string.
func exportSlots(w io.Writer, store *storage.Store, slots []string) error {
	if len(slots) == 0 {
		slots = portal.Slots
	}
	out := make(map[string]json.RawMessage, len(slots))
	for _, slot := range slots {
		raw, ok, err := store.Raw(slot)
		if err != nil {
			return fmt.Errorf("read slot %q: %w", slot, err)
		}
		if !ok || raw == "" {
			out[slot] = json.RawMessage("null")
			continue
		}
		if !json.Valid([]byte(raw)) {
			quoted, _ := json.Marshal(raw)
			out[slot] = quoted
			continue
		}
		out[slot] = json.RawMessage(raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
