package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate"
	"github.com/aretw0/swarmstate/pkg/adapters/file"
	httpAdapter "github.com/aretw0/swarmstate/pkg/adapters/http"
	"github.com/aretw0/swarmstate/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/swarmstate/pkg/adapters/redis"
	"github.com/aretw0/swarmstate/pkg/checkpoint"
	"github.com/aretw0/swarmstate/pkg/observability"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the checkpoint HTTP server",
	Long:  `Starts the swarmstate engine in server mode, exposing checkpoint merge, migrate and inspection operations over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Checkpoint store backend: memory, file or redis")
	serveCmd.Flags().String("data-dir", "", "Directory for the file store")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
}

func runServe(cmd *cobra.Command) error {
	metrics := observability.New(prometheus.DefaultRegisterer)
	eng, err := newEngineWithMetrics(cmd, metrics)
	if err != nil {
		return err
	}

	store, locker, err := buildStore(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	manager := checkpoint.NewManager(store, eng.Merger(), eng.Registry(),
		checkpoint.WithLocker(locker),
		checkpoint.WithLogger(log),
	)

	handler := httpAdapter.NewHandler(httpAdapter.Config{
		Manager:  manager,
		Migrator: eng.Migrator(),
		Fields:   eng.Registry(),
		Logger:   log,
	})

	port, _ := cmd.Flags().GetString("port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting swarmstate server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("swarmstate server stopped gracefully")
		return nil
	}
}

func newEngineWithMetrics(cmd *cobra.Command, metrics *observability.Metrics) (*swarmstate.Engine, error) {
	opts := []swarmstate.Option{
		swarmstate.WithLogger(newLogger(cmd)),
		swarmstate.WithMetrics(metrics),
	}
	if path, _ := cmd.Flags().GetString("registry"); path != "" {
		reg, err := registry.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
		opts = append(opts, swarmstate.WithRegistry(reg))
	}
	return swarmstate.New(opts...)
}

func buildStore(cmd *cobra.Command) (ports.CheckpointStore, ports.DistributedLocker, error) {
	backend, _ := cmd.Flags().GetString("store")
	switch backend {
	case "memory":
		return memory.NewStore(), memory.NewLocker(), nil
	case "file":
		dataDir, _ := cmd.Flags().GetString("data-dir")
		return file.New(dataDir), memory.NewLocker(), nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		client := goredis.NewClient(&goredis.Options{Addr: addr})
		store := redisAdapter.NewFromClient(client)
		locker := redisAdapter.NewLocker(client, "swarmstate:")
		return store, locker, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
