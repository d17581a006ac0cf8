// Command nodesim runs one simulated motion node in a host process, attached
// to an in-process link.Bus instead of real RS-485 wiring. It plays the role the teacher pack's targets/rp2040
// firmware plays on real hardware, reduced to a host-buildable stand-in
// driven by core.RealtimeClock and core.RecordingGPIO, with its telemetry
// exposed over host/monitor the same way a real deployment would expose
// it.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/amken3d/gestalt-node/core"
	"github.com/amken3d/gestalt-node/host/client"
	"github.com/amken3d/gestalt-node/host/monitor"
	"github.com/amken3d/gestalt-node/link"
)

var (
	axes         = flag.Int("axes", 1, "axis count for the simulated node (1 or 3)")
	tickPeriod   = flag.Duration("tick", 100*time.Microsecond, "step generator tick period")
	monitorAddr  = flag.String("monitor-addr", ":8732", "telemetry websocket listen address")
	nodeAddress  = flag.Uint("address", 1, "bus address for the simulated node")
	debug        = flag.Bool("debug", false, "enable synchronous debug output")
)

func main() {
	flag.Parse()

	if *debug {
		core.SetDebugWriter(func(msg string) { log.Println(msg) })
		core.SetDebugEnabled(true)
	}

	gpio := core.NewRecordingGPIO()
	clock := core.NewRealtimeClock(*tickPeriod)

	cfg := core.NodeConfig{
		Axes:       uint8(*axes),
		Descriptor: fmt.Sprintf("nodesim-%d-axis", *axes),
	}
	for i := 0; i < int(cfg.Axes); i++ {
		cfg.StepPin[i] = core.GPIOPin(10 + i*3)
		cfg.DirPin[i] = core.GPIOPin(11 + i*3)
		cfg.EnablePin[i] = core.GPIOPin(12 + i*3)
	}

	node := core.NewNode(cfg, gpio, clock)
	node.Start()
	defer node.Stop()

	bus := link.NewBus()
	bus.Attach(uint8(*nodeAddress), link.NewRouter(node, uint8(*nodeAddress)))

	c := client.DialBus(bus, uint8(*nodeAddress), int(cfg.Axes))

	srv := monitor.New(monitor.Config{
		Addr:  *monitorAddr,
		Nodes: map[string]monitor.Source{cfg.Descriptor: c},
	})

	log.Printf("nodesim: node %q running at address %d, telemetry on %s", cfg.Descriptor, *nodeAddress, *monitorAddr)
	if err := srv.Start(); err != nil {
		log.Fatalf("nodesim: telemetry server: %v", err)
	}
}
