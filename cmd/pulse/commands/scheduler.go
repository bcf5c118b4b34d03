package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/finpulse/internal/scheduler"
	"github.com/wonny/finpulse/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 즉시 실행

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/pulse scheduler start
  go run ./cmd/pulse scheduler list
  go run ./cmd/pulse scheduler run refresh_scores`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- refresh_scores: REFRESH_SCHEDULE (기본 5분마다, 캐시 갱신)
- score_history: 매시 정각 (DATABASE_URL 설정 시, 점수 저장 + 보존기간 정리)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FinPulse Scheduler ===")

	sched, a, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.Jobs())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.Stats()
	widths := []int{16, 16}
	PrintTableHeader([]string{"Job", "Schedule"}, widths)
	for _, name := range sched.Jobs() {
		PrintTableRow([]string{name, stats[name].Schedule}, widths)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, a, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if jsonOutput {
		return PrintJSON(result)
	}
	renderJobResult(result)
	if !result.Success {
		return fmt.Errorf("job %s failed", jobName)
	}
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.Stats()
	if jsonOutput {
		return PrintJSON(stats)
	}
	renderJobStats(stats)
	return nil
}

func renderJobResult(result scheduler.JobResult) {
	if result.Success {
		PrintSuccess(fmt.Sprintf("%s completed in %.2fs", result.JobName, result.Duration.Seconds()))
		return
	}
	PrintError(fmt.Sprintf("%s failed after %.2fs: %s", result.JobName, result.Duration.Seconds(), result.Error))
}

func renderJobStats(stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "Job Statistics:")
	fmt.Fprintln(out)

	for _, name := range names {
		stat := stats[name]
		fmt.Fprintf(out, "📊 %s\n", name)
		fmt.Fprintf(out, "   Schedule: %s\n", stat.Schedule)
		fmt.Fprintf(out, "   Total Runs: %d\n", stat.TotalRuns)
		fmt.Fprintf(out, "   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Fprintf(out, "   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Fprintf(out, "   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastSuccess != nil {
			fmt.Fprintf(out, "   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Fprintf(out, "   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Fprintln(out)
	}
}

// initScheduler wires the engine and registers the jobs. Stats live in
// process memory, so status only covers this invocation.
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *app, error) {
	a, err := bootstrap(cmd.Context(), bootstrapOptions{
		withMetrics: true,
		withHistory: true,
	})
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log, a.metrics, scheduler.DefaultOptions())

	if err := sched.AddJob(jobs.NewRefreshJob(a.service, a.cfg.RefreshSchedule, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	if a.history != nil {
		job := jobs.NewHistoryJob(a.service, a.history, a.cfg.Database.Retention, a.log)
		if err := sched.AddJob(job); err != nil {
			a.Close()
			return nil, nil, err
		}
	} else {
		a.log.Info("DATABASE_URL not set, score_history job disabled")
	}

	return sched, a, nil
}
