package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	Participants     int
	Threshold        int
	MaxNonceAttempts int
	Strict           bool
	Verbose          bool
}

var (
	globalFlags GlobalFlags
	logger      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tecdsa",
	Short: "Threshold ECDSA over secp256k1",
	Long: `tecdsa splits a secp256k1 key into Shamir shares and lets any
threshold of them produce an ordinary recoverable ECDSA signature,
without ever reassembling the key.

Nonces are produced by a trusted dealer. Whoever runs this tool learns
each nonce, so it is a demonstration and test harness, not a custody
solution.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(globalFlags.Verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaults := tecdsa.DefaultConfig()

	rootCmd.PersistentFlags().IntVarP(&globalFlags.Participants, "participants", "n", defaults.Participants, "number of shares")
	rootCmd.PersistentFlags().IntVarP(&globalFlags.Threshold, "threshold", "t", defaults.Threshold, "shares required to sign")
	rootCmd.PersistentFlags().IntVar(&globalFlags.MaxNonceAttempts, "max-nonce-attempts", defaults.MaxNonceAttempts, "nonce re-agreements before a signing event is abandoned")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Strict, "strict", false, "enforce threshold security policy")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log every signing step")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(signCmd)
}

// config builds the library configuration from global flags
func config() *tecdsa.Config {
	return &tecdsa.Config{
		Curve:            tecdsa.Secp256k1,
		Threshold:        globalFlags.Threshold,
		Participants:     globalFlags.Participants,
		MaxNonceAttempts: globalFlags.MaxNonceAttempts,
		StrictValidation: globalFlags.Strict,
	}
}

func newSession() (*tecdsa.SigningSession, error) {
	cfg := config()
	curve, err := tecdsa.NewCurve(cfg.Curve)
	if err != nil {
		return nil, err
	}
	return tecdsa.NewSigningSession(cfg, tecdsa.NewTrustedDealerNonce(curve), tecdsa.NewZapTraceHandler(logger))
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
