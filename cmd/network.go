package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/routing"
)

var networkFlags struct {
	network string
	asJSON  bool
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Print the tray network topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		net := routing.DefaultNetwork()
		path := networkFlags.network
		if path == "" {
			path = cfg.Routing.TopologyPath
		}
		if path != "" {
			n, err := routing.LoadNetwork(path)
			if err != nil {
				return err
			}
			net = n
		}

		topo := net.Topology()
		if networkFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(topo)
		}

		fmt.Println("Nodes:")
		for _, n := range topo.Nodes {
			if n.Kind == string(routing.NodeTray) {
				fmt.Printf("  %-14s tray   fill=%5.1f%%  capacity=%d  (%s)\n",
					n.ID, n.Fill, n.Capacity, model.ClassifyFill(n.Fill))
			} else {
				fmt.Printf("  %-14s equipment\n", n.ID)
			}
		}
		fmt.Println("Edges:")
		for _, e := range topo.Edges {
			fmt.Printf("  %s -- %s  %.1f m\n", e.Source, e.Target, e.Distance)
		}
		return nil
	},
}

func init() {
	networkCmd.Flags().StringVar(&networkFlags.network, "network", "", "tray topology YAML file (default built-in network)")
	networkCmd.Flags().BoolVar(&networkFlags.asJSON, "json", false, "print topology as JSON")
	rootCmd.AddCommand(networkCmd)
}
