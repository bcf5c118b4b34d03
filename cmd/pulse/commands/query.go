package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/history"
)

var (
	scoreCmd = &cobra.Command{
		Use:   "score [symbol...]",
		Short: "PulseScore 계산",
		Long: `종목별 PulseScore(0~100)를 계산합니다.

종목을 지정하지 않으면 엔진 설정의 유니버스 전체를 계산합니다.

Example:
  go run ./cmd/pulse score AAPL MSFT
  go run ./cmd/pulse score --json`,
		RunE: runScore,
	}

	riskCmd = &cobra.Command{
		Use:   "risk [symbol]",
		Short: "리스크 분석",
		Args:  cobra.ExactArgs(1),
		RunE:  runRisk,
	}

	stockCmd = &cobra.Command{
		Use:   "stock [symbol]",
		Short: "기술적 스냅샷 조회",
		Args:  cobra.ExactArgs(1),
		RunE:  runStock,
	}

	screenCmd = &cobra.Command{
		Use:   "screen",
		Short: "기회 스크리닝",
		Long: `유니버스를 스캔하여 Momentum Breakout / Oversold Bounce /
Trend Reversal / Volume Spike 기회를 점수순으로 출력합니다.`,
		Args: cobra.NoArgs,
		RunE: runScreen,
	}

	overviewCmd = &cobra.Command{
		Use:   "overview",
		Short: "시장 개요 (벤치마크 + 섹터)",
		Args:  cobra.NoArgs,
		RunE:  runOverview,
	}

	historyCmd = &cobra.Command{
		Use:   "history [symbol]",
		Short: "저장된 PulseScore 이력 조회 (DATABASE_URL 필요)",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
)

var (
	historyLimit  int
	historyLatest bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultLimit, "최대 조회 건수")
	historyCmd.Flags().BoolVar(&historyLatest, "latest", false, "가장 최근 점수만 조회")
}

// queryApp bootstraps without metrics or history; logs go to stderr so
// stdout stays machine-readable
func queryApp(cmd *cobra.Command) (*app, error) {
	return bootstrap(cmd.Context(), bootstrapOptions{logOutput: os.Stderr})
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := queryApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var results []contracts.PulseScoreResult
	if len(args) == 0 {
		results = a.service.ScoreUniverse(cmd.Context())
	} else {
		for _, symbol := range args {
			results = append(results, a.service.PulseScore(cmd.Context(), symbol))
		}
	}

	if jsonOutput {
		return PrintJSON(results)
	}
	renderScores(results)
	return nil
}

func runRisk(cmd *cobra.Command, args []string) error {
	a, err := queryApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.service.Risk(cmd.Context(), args[0])
	if jsonOutput {
		return PrintJSON(result)
	}
	renderRisk(result)
	return nil
}

func runStock(cmd *cobra.Command, args []string) error {
	a, err := queryApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.service.Snapshot(cmd.Context(), args[0])
	if jsonOutput {
		return PrintJSON(snap)
	}
	renderSnapshot(snap)
	return nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := queryApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.service.Opportunities(cmd.Context())
	if jsonOutput {
		return PrintJSON(list)
	}
	renderOpportunities(list)
	return nil
}

func runOverview(cmd *cobra.Command, args []string) error {
	a, err := queryApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	overview := a.service.MarketOverview(cmd.Context())
	if jsonOutput {
		return PrintJSON(overview)
	}
	renderOverview(overview)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context(), bootstrapOptions{logOutput: os.Stderr, withHistory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		return errors.New("score history requires DATABASE_URL")
	}

	var entries []history.Entry
	if historyLatest {
		var latest *history.Entry
		latest, err = a.history.Latest(cmd.Context(), args[0])
		if latest != nil {
			entries = []history.Entry{*latest}
		}
	} else {
		entries, err = a.history.List(cmd.Context(), args[0], historyLimit)
	}
	if errors.Is(err, history.ErrNotFound) {
		PrintInfo(fmt.Sprintf("No stored scores for %s", strings.ToUpper(args[0])))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if jsonOutput {
		return PrintJSON(entries)
	}
	renderHistory(entries)
	return nil
}

func renderScores(results []contracts.PulseScoreResult) {
	PrintHeader("PulseScore", time.Now().Format("2006-01-02 15:04:05"))

	widths := []int{8, 7, 15, 12, 10, 9, 9}
	PrintTableHeader([]string{"Symbol", "Score", "Trend", "Rec", "Price", "Change", "Data"}, widths)
	for _, r := range results {
		PrintTableRow([]string{
			r.Symbol,
			formatFloat(r.PulseScore, 1),
			r.Trend,
			r.Recommendation,
			formatFloat(r.CurrentPrice, 2),
			formatPercent(r.PriceChangePercent),
			dataTag(r.IsRealData),
		}, widths)
	}
}

func renderRisk(r contracts.RiskResult) {
	PrintHeader("Risk: "+r.Symbol, fmt.Sprintf("%s (%s)", r.RiskLevel, dataTag(r.IsRealData)))

	const kw = 16
	PrintKeyValue("Risk Score", formatFloat(r.RiskScore, 1), kw)
	PrintKeyValue("Volatility", formatFloat(r.Volatility*100, 2)+"%", kw)
	PrintKeyValue("Max Drawdown", formatFloat(r.MaxDrawdown, 2)+"%", kw)
	PrintKeyValue("Beta", formatFloat(r.Beta, 2), kw)
	PrintKeyValue("VaR 95", formatFloat(r.VaR95, 2)+"%", kw)
	PrintKeyValue("CVaR 95", formatFloat(r.CVaR95, 2)+"%", kw)
	PrintKeyValue("Sharpe", formatFloat(r.SharpeRatio, 2), kw)
	PrintSeparator()
	PrintKeyValue("Market Crash", formatPercent(r.StressTest.MarketCrash), kw)
	PrintKeyValue("Recession", formatPercent(r.StressTest.Recession), kw)
	PrintKeyValue("Volatility Spike", formatPercent(r.StressTest.VolatilitySpike), kw)
}

func renderSnapshot(s contracts.TechnicalSnapshot) {
	PrintHeader(s.Symbol+" "+s.CompanyName, dataTag(s.IsRealData))

	const kw = 14
	PrintKeyValue("Price", formatFloat(s.CurrentPrice, 2), kw)
	PrintKeyValue("Change", formatPercent(s.PriceChangePercent), kw)
	PrintKeyValue("Volume Ratio", formatFloat(s.VolumeRatio(), 2), kw)
	PrintKeyValue("RSI", formatFloat(s.RSI, 2), kw)
	PrintKeyValue("MACD", formatFloat(s.MACD, 4), kw)
	PrintKeyValue("MACD Signal", formatFloat(s.MACDSignal, 4), kw)
	PrintKeyValue("SMA20", formatFloat(s.SMA20, 2), kw)
	PrintKeyValue("SMA50", formatFloat(s.SMA50, 2), kw)
	PrintKeyValue("Trend Strength", formatFloat(s.TrendStrength, 0), kw)
	if len(s.Guards) > 0 {
		PrintWarning("Neutral defaults: " + strings.Join(s.Guards, ", "))
	}
}

func renderOpportunities(list contracts.OpportunityList) {
	PrintHeader("Opportunities", fmt.Sprintf("Scanned %d, found %d", list.Scanned, list.Count()))

	if list.Count() == 0 {
		PrintInfo("No opportunities above threshold")
		return
	}

	widths := []int{4, 8, 18, 7, 7, 9}
	PrintTableHeader([]string{"#", "Symbol", "Type", "Score", "Conf", "Change"}, widths)
	for i, o := range list.Opportunities {
		PrintTableRow([]string{
			strconv.Itoa(i + 1),
			o.Symbol,
			o.Type,
			formatFloat(o.OpportunityScore, 1),
			formatFloat(o.Confidence, 0),
			formatPercent(o.CurrentChange),
		}, widths)
	}
	fmt.Fprintln(out)
	for _, o := range list.Opportunities {
		fmt.Fprintf(out, "%s: %s\n", o.Symbol, strings.Join(o.Reasoning, "; "))
	}
}

func renderOverview(o contracts.MarketOverview) {
	PrintHeader("Market Overview", fmt.Sprintf("%s %s → %s",
		o.BenchmarkSymbol, formatPercent(o.BenchmarkPerformance), o.MarketSentiment))

	widths := []int{14, 9, 9, 7}
	PrintTableHeader([]string{"Sector", "Perf", "Trend", "Real"}, widths)
	for _, s := range o.SectorPerformance {
		PrintTableRow([]string{
			s.Sector,
			formatPercent(s.Performance),
			s.Trend,
			strconv.Itoa(s.RealMembers),
		}, widths)
	}
}

func renderHistory(entries []history.Entry) {
	if len(entries) == 0 {
		return
	}
	PrintHeader("History: "+entries[0].Symbol, fmt.Sprintf("%d entries", len(entries)))

	widths := []int{20, 7, 15, 12}
	PrintTableHeader([]string{"Scored At", "Score", "Trend", "Rec"}, widths)
	for _, e := range entries {
		PrintTableRow([]string{
			e.ScoredAt.Format("2006-01-02 15:04:05"),
			formatFloat(e.PulseScore, 1),
			e.Trend,
			e.Recommendation,
		}, widths)
	}
}
