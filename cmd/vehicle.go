package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/core"
	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/vehicle"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// vehicleCmd represents the vehicle command
var vehicleCmd = &cobra.Command{
	Use:   "vehicle [registration]",
	Short: "Query configured vehicles or a single registration number",
	Args:  cobra.MaximumNArgs(1),
	Run:   runVehicle,
}

func init() {
	rootCmd.AddCommand(vehicleCmd)
	vehicleCmd.Flags().Bool("yaml", false, "Print records as YAML")
	vehicleCmd.Flags().String("url", "", "Vehicle enquiry endpoint")
	vehicleCmd.Flags().String("apikey", "", "DVLA API key")
	bind(vehicleCmd, "apikey")
}

// lookupConfigs returns the configured vehicles, or the single registration given on the command line
func lookupConfigs(conf config, args []string) ([]vehicle.Config, error) {
	if len(args) == 1 {
		conf.Vehicles = []map[string]interface{}{
			{"registration": args[0]},
		}
	}

	if len(conf.Vehicles) == 0 {
		return nil, fmt.Errorf("missing vehicles")
	}

	return vehicleConfigs(conf)
}

func runVehicle(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), nil)

	conf := defaultConfig()
	if err := viper.Unmarshal(&conf); err != nil {
		log.FATAL.Fatal(err)
	}

	util.LogLevel(conf.Log, conf.Levels)

	if url := cmd.Flag("url").Value.String(); url != "" {
		conf.URL = url
	}

	ccs, err := lookupConfigs(conf, args)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	asYAML := cmd.Flag("yaml").Value.String() == "true"

	for _, cc := range ccs {
		v := vehicle.NewFromConfig(cc)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		rec, err := v.Vehicle(ctx, cc.Registration)
		cancel()

		if err != nil {
			log.ERROR.Printf("%s: %v", cc.Registration, err)
			continue
		}

		if asYAML {
			if err := dumpYAML(os.Stdout, cc.Registration, rec); err != nil {
				log.FATAL.Fatal(err)
			}
			continue
		}

		dumpTable(os.Stdout, cc.Registration, rec)
	}
}

func dumpYAML(w io.Writer, reg string, rec api.Record) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	return enc.Encode(map[string]api.Record{reg: rec})
}

func dumpTable(w io.Writer, reg string, rec api.Record) {
	fmt.Fprintln(w, reg)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Sensor", "Value"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, desc := range core.SensorTypes {
		val, ok := rec.String(desc.Key)
		if !ok {
			val = core.Unknown
		}
		table.Append([]string{desc.Name, val})
	}

	table.Render()
	fmt.Fprintln(w)
}
