package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfig string
	jsonOutput   bool
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "FinPulse - 기술적 지표 기반 종목 분석 엔진",
	Long: `FinPulse Unified CLI

Yahoo Finance 일봉으로 PulseScore, 리스크, 기회 스크리닝, 시장 개요를 계산.
데이터를 가져오지 못하면 결정적(synthetic) 결과로 대체.

Usage:
  go run ./cmd/pulse [command]

Examples:
  go run ./cmd/pulse api
  go run ./cmd/pulse score AAPL MSFT
  go run ./cmd/pulse screen --json
  go run ./cmd/pulse scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&engineConfig, "engine-config", "", "engine YAML config (default: ENGINE_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
