package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/sizing"
)

var sizeFlags struct {
	cableNumber  string
	loadKW       float64
	loadKVA      float64
	voltage      float64
	powerFactor  float64
	efficiency   float64
	length       float64
	runs         int
	installation string
	phase        string
	ambientTemp  float64
	faultCurrent float64
	feederType   string
	standard     string
	asJSON       bool
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size a single cable",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := model.CableSpec{
			CableNumber:   sizeFlags.cableNumber,
			LoadKW:        sizeFlags.loadKW,
			LoadKVA:       sizeFlags.loadKVA,
			Voltage:       sizeFlags.voltage,
			PowerFactor:   sizeFlags.powerFactor,
			Efficiency:    sizeFlags.efficiency,
			Length:        sizeFlags.length,
			Runs:          sizeFlags.runs,
			Installation:  sizeFlags.installation,
			PhaseType:     model.PhaseType(sizeFlags.phase),
			AmbientTemp:   sizeFlags.ambientTemp,
			ProspectiveSC: sizeFlags.faultCurrent,
			FeederType:    sizeFlags.feederType,
		}

		standard := sizeFlags.standard
		if standard == "" {
			standard = cfg.Sizing.Standard
		}
		engine := sizing.New(sizing.DefaultCatalog(), sizing.ProfileFor(standard),
			sizing.WithClearingTime(cfg.Sizing.ClearingTimeSecs))

		result, err := engine.Size(spec)
		if err != nil {
			return err
		}

		if sizeFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("Cable:          %s\n", result.CableNumber)
		fmt.Printf("FLC:            %.2f A\n", result.FullLoadCurrent)
		fmt.Printf("Required:       %.2f A (grouping %.2f, temp %.2f, install %.2f)\n",
			result.DeratedCurrent, result.GroupingFactor, result.TempFactor, result.InstallationFactor)
		fmt.Printf("Selected:       %s (rated %.0f A, margin %.1f%%)\n",
			result.Configuration, result.Ampacity, result.AmpacityMarginPct)
		fmt.Printf("Voltage drop:   %.2f%% (limit %.1f%%, pass=%t)\n",
			result.VoltageDrop, result.VDLimit, result.VDPass)
		fmt.Printf("Short circuit:  %s\n", result.SCCheck)
		fmt.Printf("Approved:       %t\n", result.Approved)
		return nil
	},
}

func init() {
	sizeCmd.Flags().StringVar(&sizeFlags.cableNumber, "cable", "", "cable number (required)")
	sizeCmd.Flags().Float64Var(&sizeFlags.loadKW, "kw", 0, "load in kW")
	sizeCmd.Flags().Float64Var(&sizeFlags.loadKVA, "kva", 0, "load in kVA (used when kW is absent)")
	sizeCmd.Flags().Float64Var(&sizeFlags.voltage, "voltage", 415, "line voltage in volts")
	sizeCmd.Flags().Float64Var(&sizeFlags.powerFactor, "pf", 0.9, "power factor")
	sizeCmd.Flags().Float64Var(&sizeFlags.efficiency, "eff", 0.95, "efficiency")
	sizeCmd.Flags().Float64Var(&sizeFlags.length, "length", 0, "route length in meters")
	sizeCmd.Flags().IntVar(&sizeFlags.runs, "runs", 1, "parallel runs")
	sizeCmd.Flags().StringVar(&sizeFlags.installation, "installation", "air", "installation method (air, duct, buried)")
	sizeCmd.Flags().StringVar(&sizeFlags.phase, "phase", "", "phase type (single, three)")
	sizeCmd.Flags().Float64Var(&sizeFlags.ambientTemp, "ambient", 0, "ambient temperature in degC")
	sizeCmd.Flags().Float64Var(&sizeFlags.faultCurrent, "sc", 0, "prospective short-circuit current in amperes")
	sizeCmd.Flags().StringVar(&sizeFlags.feederType, "feeder-type", "", "feeder type code")
	sizeCmd.Flags().StringVar(&sizeFlags.standard, "standard", "", "sizing standard (IEC, IS; default from config)")
	sizeCmd.Flags().BoolVar(&sizeFlags.asJSON, "json", false, "print result as JSON")
	sizeCmd.MarkFlagRequired("cable")
	rootCmd.AddCommand(sizeCmd)
}
