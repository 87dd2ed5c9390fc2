package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"benchit/internal/banner"
	"benchit/internal/cli"
	"benchit/internal/config"
	"benchit/internal/dummy"
	"benchit/internal/logging"
	"benchit/internal/styles"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "benchit",
	Short: "benchit - comparative load testing of two HTTP backends",
	Long: `
benchit drives wrk against the node and actix backends over a sweep of
concurrency levels and request shapes, optionally samples postgres, node and
actix process usage, and prints a table plus ASCII charts per scenario.

wrk must be on $PATH unless --tool builtin is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		log, err := logging.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Start(ctx, cfg, cmd.OutOrStdout(), log)
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), banner.GetString(cmd.OutOrStdout()))
		cmd.Usage()
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, styles.For(os.Stderr).Error.Render(fmt.Sprintf("❌ %v", err)))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.benchit.yaml)")

	bindFlags(rootCmd.Flags())
}

func bindFlags(f *pflag.FlagSet) {
	f.StringP(config.KeyHost, "H", config.DefaultHost, "IP address of the target host")
	f.Uint16P(config.KeyMaxConcurrency, "c", config.DefaultMaxConcurrency, "Concurrency limit (exclusive)")
	f.Uint16P(config.KeyNodePort, "n", config.DefaultNodePort, "Node port")
	f.Uint16P(config.KeyActixPort, "a", config.DefaultActixPort, "Actix port")
	f.BoolP(config.KeyMonitor, "m", false, "Monitor local processes: node, actix and postgres")
	f.Uint16P(config.KeyTime, "t", config.DefaultTime, "Measurement time in seconds")
	f.String(config.KeyTool, config.DefaultTool, `Load generator: path to wrk or "builtin"`)
	f.Int(config.KeyWidth, config.DefaultWidth, "Chart width in characters")
	f.String(config.KeyLogLevel, config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	if err := viper.BindPFlags(f); err != nil {
		panic(err)
	}
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".benchit")
		}
	}
	viper.SetEnvPrefix("benchit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "⚠️  config: %v\n", err)
		}
	}
}

// --- Dummy Subcommand ---
var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a stand-in /tasks backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		log, err := logging.New(os.Stderr, viper.GetString(config.KeyLogLevel))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := dummy.Start(dummy.ServerConfig{Port: port, Log: log})
		<-ctx.Done()
		return srv.Close()
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run dummy server on")
}
