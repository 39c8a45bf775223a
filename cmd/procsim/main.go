// Package main provides the entry point for ProcSim.
// ProcSim simulates an out-of-order superscalar processor over an
// instruction trace and reports throughput statistics.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/procsim/timing/proc"
	"github.com/sarchlab/procsim/trace"
)

var (
	resultBuses = flag.Int("r", 0, "Number of result buses")
	k0Units     = flag.Int("k0", 0, "Number of class-0 functional units")
	k1Units     = flag.Int("k1", 0, "Number of class-1 functional units")
	k2Units     = flag.Int("k2", 0, "Number of class-2 functional units")
	fetchRate   = flag.Int("f", 0, "Instructions fetched per cycle")
	configPath  = flag.String("config", "", "Path to processor configuration JSON file")
	printTrace  = flag.Bool("trace", false, "Print the per-cycle event log")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: procsim [options] <trace file>\n")
		fmt.Fprintf(os.Stderr, "\nUse '-' to read the trace from stdin.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	config, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tracePath := flag.Arg(0)
	in, err := openTrace(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = in.Close() }()

	if *verbose {
		fmt.Printf("Trace: %s\n", tracePath)
		fmt.Printf("Config: r=%d k0=%d k1=%d k2=%d f=%d (stations: %d)\n",
			config.ResultBuses, config.K0Units, config.K1Units, config.K2Units,
			config.FetchRate, config.StationCount())
	}

	var opts []proc.Option
	var log *proc.EventLog
	if *printTrace {
		log = proc.NewEventLog()
		opts = append(opts, proc.WithEventRecorder(log))
	}

	processor, err := proc.New(config, trace.NewReader(in), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats, err := processor.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
		os.Exit(1)
	}

	if *printTrace {
		printEventLog(log)
	}

	printStats(stats)
}

// buildConfig assembles the configuration from the config file (or
// defaults) with explicitly set flags taking precedence.
func buildConfig() (*proc.Config, error) {
	var config *proc.Config
	if *configPath != "" {
		loaded, err := proc.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		config = proc.DefaultConfig()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			config.ResultBuses = *resultBuses
		case "k0":
			config.K0Units = *k0Units
		case "k1":
			config.K1Units = *k1Units
		case "k2":
			config.K2Units = *k2Units
		case "f":
			config.FetchRate = *fetchRate
		}
	})

	return config, nil
}

// openTrace opens the trace file, with "-" meaning stdin.
func openTrace(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// printEventLog prints the per-cycle event log in the tabular
// diagnostic format downstream trace comparison expects.
func printEventLog(log *proc.EventLog) {
	fmt.Printf("CYCLE\tOPERATION\tINSTRUCTION\n")
	for _, e := range log.Events() {
		fmt.Printf("%d\t%s\t%d\n", e.Cycle, e.Kind, e.Tag)
	}
}

// printStats prints the final statistics report.
func printStats(stats proc.Stats) {
	fmt.Printf("Processor stats:\n")
	fmt.Printf("Total instructions: %d\n", stats.Retired)
	fmt.Printf("Avg inst fired per cycle: %f\n", stats.AvgFiredPerCycle())
	fmt.Printf("Avg inst retired per cycle: %f\n", stats.AvgRetiredPerCycle())
	fmt.Printf("Avg dispatch queue size: %f\n", stats.AvgDispatchQueue)
	fmt.Printf("Maximum dispatch queue size: %d\n", stats.MaxDispatchQueue)
	fmt.Printf("Total run time (cycles): %d\n", stats.Cycles)

	if *verbose {
		fmt.Printf("\nRun ID: %s\n", stats.RunID)
		fmt.Printf("Instructions fetched: %d\n", stats.Fetched)
	}
}
