package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arelius-labs/passvault/internal/config"
)

var (
	cfgFile string
	conf    = &config.Conf{}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pm",
		Short: "A local, file-based password vault",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.passvault.yaml)")
	root.PersistentFlags().String("vault", "", "vault file path (default $HOME/.passwords)")
	root.PersistentFlags().String("audit", "", "audit log path (default $HOME/.passvault-audit.db, empty disables it)")
	root.PersistentFlags().Int("iterations", config.DefaultIterations, "default PBKDF2 iteration count for new records")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	_ = viper.BindPFlag("vault", root.PersistentFlags().Lookup("vault"))
	_ = viper.BindPFlag("audit", root.PersistentFlags().Lookup("audit"))
	_ = viper.BindPFlag("iterations", root.PersistentFlags().Lookup("iterations"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(initConfig)

	root.AddCommand(
		newUnlockCmd(),
		newListCmd(),
		newAddCmd(),
		newRevealCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newPasswdCmd(),
		newStatsCmd(),
		newHistoryCmd(),
	)
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".passvault")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("passvault")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(conf); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not parse configuration:", err)
	}
	if conf.VaultPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			conf.VaultPath = filepath.Join(home, config.DefaultVaultFilename)
		}
	}
	if conf.AuditPath == "" && !viper.IsSet("audit") {
		if home, err := os.UserHomeDir(); err == nil {
			conf.AuditPath = filepath.Join(home, config.DefaultAuditFilename)
		}
	}
	if conf.Iterations <= 0 {
		conf.Iterations = config.DefaultIterations
	}
}
