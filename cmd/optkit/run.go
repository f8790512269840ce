package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optkit-io/optkit/objectives"
	"github.com/optkit-io/optkit/opt"
)

var (
	runObjective string
	runMethod    string
	runDirection string
	runEngine    string
	runMaxEval   uint
	runAbsTol    float64
	runRelTol    float64
	runStopScore float64
	runSeed      uint64
	runTimeout   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one optimization and print the result",
	Long: `Runs a single optimization of a catalog objective and prints the best
point, its score and the engine's termination status. The timeout is
cooperative: it is checked before each evaluation, so the in-flight
evaluation always completes.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runObjective, "objective", "", "catalog objective to optimize (required)")
	runCmd.Flags().StringVar(&runMethod, "method", "genetic", "algorithm: "+strings.Join(opt.MethodNames(), ", "))
	runCmd.Flags().StringVar(&runDirection, "direction", "min", "optimize towards min or max")
	runCmd.Flags().StringVar(&runEngine, "engine", "gonum", "backend engine (gonum, nlopt)")
	runCmd.Flags().UintVar(&runMaxEval, "max-eval", 0, "evaluation budget (0 means unlimited)")
	runCmd.Flags().Float64Var(&runAbsTol, "abs-tol", 0, "absolute score-difference tolerance")
	runCmd.Flags().Float64Var(&runRelTol, "rel-tol", 0, "relative score-difference tolerance")
	runCmd.Flags().Float64Var(&runStopScore, "stop-score", 0, "stop as soon as the score reaches this value")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "seed for the engine's random stream")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "wall-clock budget (0 means none)")

	runCmd.MarkFlagRequired("objective")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	prob, err := objectives.Lookup(runObjective)
	if err != nil {
		return err
	}
	method, err := opt.ParseMethod(runMethod)
	if err != nil {
		return err
	}
	factory, err := engineFor(runEngine)
	if err != nil {
		return err
	}

	criteria := opt.NewStopCriteria()
	if cmd.Flags().Changed("max-eval") {
		criteria.SetMaxIterations(runMaxEval)
	}
	if cmd.Flags().Changed("abs-tol") {
		criteria.SetAbsScoreDiff(runAbsTol)
	}
	if cmd.Flags().Changed("rel-tol") {
		criteria.SetRelScoreDiff(runRelTol)
	}
	if cmd.Flags().Changed("stop-score") {
		criteria.SetStopScore(runStopScore)
	}

	var evals atomic.Uint64
	deadline := time.Now().Add(runTimeout)
	criteria.SetStopCondition(func() bool {
		evals.Add(1)
		return runTimeout > 0 && time.Now().After(deadline)
	})

	optimizer := opt.New(method,
		opt.WithEngine(factory()),
		opt.WithLogger(log),
		opt.WithCriteria(criteria),
	)
	switch strings.ToLower(runDirection) {
	case "min", "minimize":
		optimizer.ToMin()
	case "max", "maximize":
		optimizer.ToMax()
	default:
		return fmt.Errorf("direction must be min or max, got %q", runDirection)
	}
	if cmd.Flags().Changed("seed") {
		optimizer.Seed(runSeed)
	}

	log.Info("starting run",
		zap.String("objective", prob.Name),
		zap.String("method", method.String()),
		zap.String("engine", runEngine),
		zap.String("direction", runDirection))

	start := time.Now()
	result, err := optimizer.Optimize(prob.Objective, prob.Initial, prob.Bounds)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	coords := make([]string, len(result.Optimum))
	for i, v := range result.Optimum {
		coords[i] = fmt.Sprintf("%.6g", v)
	}
	fmt.Printf("objective:   %s (%dd)\n", prob.Name, prob.Dim)
	fmt.Printf("method:      %s\n", method)
	fmt.Printf("status:      %s\n", result.Code)
	fmt.Printf("score:       %.10g\n", result.Score)
	fmt.Printf("optimum:     [%s]\n", strings.Join(coords, ", "))
	fmt.Printf("evaluations: %d\n", evals.Load())
	fmt.Printf("elapsed:     %s\n", elapsed.Round(time.Millisecond))
	return nil
}
