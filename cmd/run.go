package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvla-io/dvla/provider/mqtt"
	"github.com/dvla-io/dvla/server"
	"github.com/dvla-io/dvla/server/public"
	"github.com/dvla-io/dvla/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// shutdownTimeout is the maximum time to wait for running refreshes on exit
const shutdownTimeout = 10 * time.Second

// runCmd represents the daemon command
var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Poll the configured vehicles and publish their sensors",
	Version: rootCmd.Version,
	Run:     runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(
		"uri", "u",
		"0.0.0.0:7071",
		"Listen address",
	)
	bindP(cmd, "uri")

	cmd.PersistentFlags().Bool(
		"metrics",
		false,
		"Expose metrics",
	)
	bindP(cmd, "metrics")
}

func runRun(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
	log.INFO.Printf("dvla %s (%s)", server.Version, server.Commit)

	if cfgFile != "" {
		log.INFO.Println("using config file", cfgFile)
	}

	// load config and re-configure logging after reading config file
	conf := defaultConfig()
	if err := loadConfig(&conf); err != nil {
		log.FATAL.Fatal(err)
	}

	util.LogLevel(conf.Log, conf.Levels)

	ccs, err := vehicleConfigs(conf)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	// start broadcasting values
	tee := &util.Tee{}

	// value cache
	cache := util.NewCache()
	go cache.Run(tee.Attach())

	// setup history
	db, err := configureDatabase(conf.Database)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	// setup messaging
	pushChan, err := configureMessengers(conf.Messaging, cache)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	site := configureSite(ccs, db, pushChan)

	// setup influx
	if conf.Influx.URL != "" {
		configureInflux(conf.Influx, tee.Attach())
	}

	// setup mqtt publisher
	var mqttClient *mqtt.Client
	if conf.Mqtt.Broker != "" {
		if mqttClient, err = configureMQTT(conf.Mqtt, site, tee.Attach()); err != nil {
			log.FATAL.Fatal(err)
		}
	}

	// create webserver
	uri := conf.URI
	if addr, err := public.SetListener(uri); err == nil {
		log.INFO.Printf("listening at %s (%s)", addr, public.Addr)
	} else {
		log.WARN.Printf("invalid listen address %s: %v", uri, err)
	}

	socketHub := server.NewSocketHub(cache)
	httpd := server.NewHTTPd(uri, site, socketHub, cache, db)

	// metrics
	if conf.Metrics {
		httpd.Router().Handle("/metrics", promhttp.Handler())
	}

	// publish to UI
	go socketHub.Run(tee.Attach())

	// setup values channel
	valueChan := make(chan util.Param)
	go tee.Run(valueChan)

	// set channels
	site.Prepare(valueChan)
	site.DumpConfig()

	ctx, cancel := context.WithCancel(context.Background())
	exitC := make(chan struct{})

	go func() {
		site.Run(ctx)
		close(exitC)
	}()

	// catch signals
	go func() {
		signalC := make(chan os.Signal, 1)
		signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

		<-signalC // wait for signal
		cancel()  // signal loop to end

		code := 1
		select {
		case <-exitC: // wait for loop to end
			code = 0
		case <-time.NewTimer(shutdownTimeout).C:
		}

		if mqttClient != nil {
			mqttClient.Close()
		}

		os.Exit(code)
	}()

	log.FATAL.Println(httpd.ListenAndServe())
}
