package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/GoVed/trafast/config"
	"github.com/GoVed/trafast/element"
	"github.com/GoVed/trafast/log"
	"github.com/GoVed/trafast/recorder"
	"github.com/GoVed/trafast/simulator"
	"github.com/GoVed/trafast/utils"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "trafast",
		Short:         "Discrete-time road traffic microsimulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (.json, .yaml)")

	rootCmd.AddCommand(runCmd(&configFile))
	rootCmd.AddCommand(routeCmd(&configFile))
	rootCmd.AddCommand(sampleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	if configFile == "" {
		return config.GetConfig(), nil
	}
	if err := config.LoadConfig(configFile); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return config.GetConfig(), nil
}

// loadWorldData reads worldFile, falling back to the sample world
func loadWorldData(worldFile string) (*simulator.WorldData, error) {
	if worldFile == "" {
		return simulator.SampleWorldData(), nil
	}
	return simulator.LoadWorldFile(worldFile)
}

func newWorld(cfg *config.Config) *simulator.World {
	return simulator.NewWorld(
		simulator.ParamsFromConfig(cfg.Kinematics),
		simulator.WithPathFinder(utils.GetPathFinder(cfg)),
		simulator.WithSeed(cfg.Simulation.Seed),
	)
}

func runCmd(configFile *string) *cobra.Command {
	var worldFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a world and simulate until every vehicle arrived",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if worldFile != "" {
				cfg.Simulation.WorldFile = worldFile
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSimulation(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&worldFile, "world", "w", "", "world description (JSON); overrides simulation.worldFile")
	return cmd
}

func runSimulation(ctx context.Context, cfg *config.Config) error {
	runID := recorder.NewRunID()

	if err := log.InitLog(cfg.Logging.File, cfg.Logging.Level); err != nil {
		return err
	}
	defer log.CloseLog()
	log.LogEnvironment()
	log.LogSimParameters(runID, cfg)

	data, err := loadWorldData(cfg.Simulation.WorldFile)
	if err != nil {
		return err
	}
	world := newWorld(cfg)
	if err := world.Load(ctx, data); err != nil {
		return err
	}
	if cfg.Simulation.RandomVehicles > 0 {
		rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
		if _, err := world.AddRandomVehicles(cfg.Simulation.RandomVehicles, rng); err != nil {
			return err
		}
	}

	rc := simulator.RunConfigFromConfig(cfg)
	if cfg.Recorder.Enabled {
		rc.DataFiles, err = recorder.InitDataFiles(cfg.Recorder.Dir, runID, cfg.Recorder.TraceInterval > 0)
		if err != nil {
			return err
		}
	}

	log.WriteLog("----------------------------------Simulation Start----------------------------------")
	start := time.Now()
	if err := simulator.Run(ctx, world, rc); err != nil {
		return err
	}
	log.WriteLog(fmt.Sprintf("---------------------------------- Completed in %v ----------------------------------", time.Since(start)))
	return nil
}

func routeCmd(configFile *string) *cobra.Command {
	var worldFile string

	cmd := &cobra.Command{
		Use:   "route <from> <to>",
		Short: "Print the route the configured planner picks between two segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			from, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("origin segment: %w", err)
			}
			to, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("destination segment: %w", err)
			}

			if worldFile == "" {
				worldFile = cfg.Simulation.WorldFile
			}
			data, err := loadWorldData(worldFile)
			if err != nil {
				return err
			}
			n, err := data.BuildNetwork()
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
			route, err := utils.GetPathFinder(cfg)(n, from, to, rng)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s route %v, driven length %.1f\n",
				cfg.Path.PathMethod, route, utils.RouteLength(n, route))
			return nil
		},
	}

	cmd.Flags().StringVarP(&worldFile, "world", "w", "", "world description (JSON)")
	return cmd
}

func sampleCmd() *cobra.Command {
	var (
		ring     int
		length   float64
		limit    float64
		vehicles int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a world description to stdout",
		Long:  "Without flags writes the built-in two-road world. With --ring writes a ring road with random trips.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ring <= 0 {
				return simulator.WriteWorldData(cmd.OutOrStdout(), simulator.SampleWorldData())
			}

			data, err := simulator.CreateCycleNetwork(ring, length, limit)
			if err != nil {
				return err
			}
			var n *element.Network
			if n, err = data.BuildNetwork(); err != nil {
				return err
			}
			if data.Vehicles, err = simulator.GenerateVehicles(n, vehicles, rand.New(rand.NewSource(seed))); err != nil {
				return err
			}
			return simulator.WriteWorldData(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().IntVar(&ring, "ring", 0, "number of segments in a ring road")
	cmd.Flags().Float64Var(&length, "length", 200, "ring segment length")
	cmd.Flags().Float64Var(&limit, "limit", 30, "ring speed limit")
	cmd.Flags().IntVar(&vehicles, "vehicles", 4, "random vehicles on the ring")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
