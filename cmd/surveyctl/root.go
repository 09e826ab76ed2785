package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newRootCmd builds the command tree with its own viper instance so that
// flags, SURVEY_* environment overrides and defaults never leak between runs.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "surveyctl",
		Short: "Submit city happiness ratings for a prediction",
		Long: `surveyctl sends the six star ratings of the city happiness survey to the
prediction service and prints the result the web form would show.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("url", "http://127.0.0.1:8080", "prediction service base URL (or set SURVEY_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "bound on the prediction call, 0 for none (or set SURVEY_TIMEOUT)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	mustBind(v, "url", rootCmd.PersistentFlags().Lookup("url"))
	mustBind(v, "timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	mustBind(v, "debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(newSubmitCmd(v))
	return rootCmd
}

// mustBind binds key to flag and panics on a misnamed flag.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag for %q: %v", key, err))
	}
}

func newLogger(v *viper.Viper) *zap.Logger {
	if !v.GetBool("debug") {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
