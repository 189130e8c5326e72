package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/config"
	"github.com/coachtui/woflo/internal/logging"
)

var (
	settings = config.New()
	log      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "woflo",
	Short: "Woflo - shop scheduling dashboard",
	Long: `Woflo serves an operational dashboard for a shop-scheduling backend:
schedule runs, work orders and tasks, rendered on the server.

Configuration comes from WOFLO_* environment variables (a .env file in the
working directory or one of its parents is loaded first) and from flags.

Examples:
  woflo serve                          # dashboard on :3000
  woflo stub --seed                    # stand-in backend on :8000
  woflo show tasks                     # print the task board
  woflo show schedule --html --out schedule.html`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromViper(settings)
		if err != nil {
			return err
		}
		l, err := logging.New(logging.Options{JSON: cfg.LogJSON, Debug: cfg.LogDebug})
		if err != nil {
			return errors.Wrap(err, "init logger")
		}
		log = l
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "scheduling backend base URL ("+config.EnvPrefix+"_API_URL)")
	flags.String("api-token", "", "bearer token for the backend ("+config.EnvPrefix+"_API_TOKEN)")
	flags.Duration("api-timeout", 0, "per-request timeout ("+config.EnvPrefix+"_API_TIMEOUT)")
	flags.Bool("log-json", false, "log JSON lines instead of console output")
	flags.Bool("debug", false, "log at debug level")
	mustBind(config.KeyAPIURL, flags, "api-url")
	mustBind(config.KeyAPIToken, flags, "api-token")
	mustBind(config.KeyAPITimeout, flags, "api-timeout")
	mustBind(config.KeyLogJSON, flags, "log-json")
	mustBind(config.KeyLogDebug, flags, "debug")

	rootCmd.AddCommand(serveCmd, stubCmd, showCmd)
}

// mustBind lets an explicitly set flag override the environment and
// defaults.
func mustBind(key string, flags *pflag.FlagSet, name string) {
	if err := settings.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

func loadConfig() (config.Config, error) {
	return config.FromViper(settings)
}

func newClient(cfg config.Config) *apiclient.Client {
	return apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.APITimeout,
		Logger:  log,
	})
}

func main() {
	loadDotEnv()
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
