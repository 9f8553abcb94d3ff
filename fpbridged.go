// fpbridged bridges vendor fingerprint sensor drivers to the platform
// authentication stack: it opens the first usable driver, serves its
// operations on the system bus and relays its events as signals.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"

	"github.com/veridianlabs/fpbridged/bridge"
	"github.com/veridianlabs/fpbridged/config"
	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/powerext"
	"github.com/veridianlabs/fpbridged/sensor"
	"github.com/veridianlabs/fpbridged/service"
	"github.com/veridianlabs/fpbridged/sysprop"
	"github.com/veridianlabs/fpbridged/virtualfp"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (default /etc/fpbridged/config.yaml)")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fpbridged %s\n", version)
		return
	}

	if err := config.LoadConfig(*configPath); err != nil {
		hallog.Fatal("load config: %v", err)
	}
	if *debug {
		hallog.SetLevel(hallog.LevelDebug)
	}
	cfg := config.Get()

	props, err := sysprop.Open(cfg.PropertyPath)
	if err != nil {
		hallog.Fatal("open property store: %v", err)
	}

	modules := cfg.Modules
	if cfg.VirtualSensor {
		virtualfp.RegisterModule()
		modules = append(modules, sensor.Module{Name: virtualfp.Class, FOD: false})
	}

	power := powerext.New(cfg.Power.BusName, dbus.ObjectPath(cfg.Power.ObjectPath),
		cfg.Power.BoostHint, cfg.Power.BoostDurationMS)

	br, err := bridge.New(bridge.Params{
		Modules: modules,
		FODPath: cfg.FODPath,
		Props:   props,
		Power:   power,
	})
	if err != nil {
		hallog.Fatal("can't bring up fingerprint bridge: %v", err)
	}

	svc, err := service.Export(br, cfg.BusName)
	if err != nil {
		br.Close()
		hallog.Fatal("can't export fingerprint bridge: %v", err)
	}

	hallog.Info("fpbridged %s running", version)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	hallog.Info("received %s, shutting down", s)

	svc.Close()
	br.Close()
}
