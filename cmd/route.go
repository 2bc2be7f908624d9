package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sceap-org/sceap/internal/routing"
)

var routeFlags struct {
	from     string
	to       string
	strategy string
	network  string
	asJSON   bool
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Find a route between two nodes in the tray network",
	RunE: func(cmd *cobra.Command, args []string) error {
		net := routing.DefaultNetwork()
		if path := routeFlags.network; path != "" {
			n, err := routing.LoadNetwork(path)
			if err != nil {
				return err
			}
			net = n
		} else if cfg.Routing.TopologyPath != "" {
			n, err := routing.LoadNetwork(cfg.Routing.TopologyPath)
			if err != nil {
				return err
			}
			net = n
		}

		strategy, err := routing.ParseStrategy(routeFlags.strategy)
		if err != nil {
			return err
		}

		router := routing.NewRouter(net, routing.WithPenaltyFactor(cfg.Routing.PenaltyFactor))
		result, err := router.Route(routeFlags.from, routeFlags.to, strategy)
		if err != nil {
			return err
		}

		if routeFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("Path:    %s\n", strings.Join(result.Path, " -> "))
		fmt.Printf("Length:  %.1f m\n", result.TotalLength)
		fmt.Printf("Fill:    %s\n", result.TrayFillStatus)
		for _, w := range result.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeFlags.from, "from", "", "source node (required)")
	routeCmd.Flags().StringVar(&routeFlags.to, "to", "", "target node (required)")
	routeCmd.Flags().StringVar(&routeFlags.strategy, "strategy", "shortest", "routing strategy (shortest, least-fill)")
	routeCmd.Flags().StringVar(&routeFlags.network, "network", "", "tray topology YAML file (default built-in network)")
	routeCmd.Flags().BoolVar(&routeFlags.asJSON, "json", false, "print result as JSON")
	routeCmd.MarkFlagRequired("from")
	routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}
