package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/server"
	"github.com/peswahq/ussd-simulator/store"
	"github.com/peswahq/ussd-simulator/store/db"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ussd-simulator",
	Short: "Developer-facing USSD endpoint simulator",
	Long: `ussd-simulator emulates a phone dialing a USSD short-code against a
target HTTP endpoint, so developers can exercise their endpoint
implementations before integration. It exposes a JSON API for driving
sessions and inspecting the raw traffic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			DSN:         viper.GetString("dsn"),
			EndpointURL: viper.GetString("endpoint"),
			Network:     viper.GetString("network"),
			PhoneNumber: viper.GetString("phone"),
			CallTimeout: viper.GetDuration("call-timeout"),
			Version:     version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("failed to validate profile: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		if err := dbDriver.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		storeInstance := store.New(dbDriver, instanceProfile)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			s.Shutdown(ctx)
			cancel()
		}()

		printGreeting(instanceProfile)
		return s.Start(ctx)
	},
}

func init() {
	rootCmd.Flags().String("mode", "dev", `mode of the server, can be "dev" or "prod"`)
	rootCmd.Flags().String("addr", "", "binding address for the server")
	rootCmd.Flags().Int("port", 3000, "binding port for the server")
	rootCmd.Flags().String("dsn", ":memory:", "dsn for the request log database")
	rootCmd.Flags().String("endpoint", profile.DefaultEndpointURL, "default target USSD endpoint URL")
	rootCmd.Flags().String("network", profile.DefaultNetwork, "default network operator (MTN, Vodafone, AirtelTigo)")
	rootCmd.Flags().String("phone", profile.DefaultPhoneNumber, "default simulated subscriber number")
	rootCmd.Flags().Duration("call-timeout", 30*time.Second, "timeout for one outbound USSD call")

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("ussdsim")
	viper.AutomaticEnv()
}

func printGreeting(p *profile.Profile) {
	fmt.Printf(`---
Server profile
version: %s
addr: %s
port: %d
mode: %s
endpoint: %s
dsn: %s
---
`, p.Version, p.Addr, p.Port, p.Mode, p.EndpointURL, p.DSN)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
