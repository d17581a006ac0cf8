// Command hostctl is the interactive host CLI for one motion node, adapted
// from the teacher pack's host/cmd/gopper-host: the same flag-parsed device
// selection and bufio.Scanner command loop, but talking this protocol's
// fixed ports through host/client instead of retrieving and querying a
// Klipper-style MCU dictionary.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/amken3d/gestalt-node/host/client"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "serial device path")
	address = flag.Uint("address", 1, "node bus address")
	axes    = flag.Int("axes", 1, "axis count of the target node")
)

func main() {
	flag.Parse()

	fmt.Println("hostctl - motion node host control")
	fmt.Println("===================================")

	fmt.Printf("Connecting to node on %s (address %d)...\n", *device, *address)
	c, err := client.Dial(*device, uint8(*address), *axes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Connected.")

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		cmd := fields[0]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "status":
			if err := printStatus(c); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "position":
			if err := printPosition(c, *axes); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "enable":
			if err := c.EnableDrivers(true); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "disable":
			if err := c.EnableDrivers(false); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "sync":
			if err := c.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "move":
			if err := doMove(c, fields[1:], *axes); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  status                      - print the node's status reply")
	fmt.Println("  position                    - print per-axis position")
	fmt.Println("  enable / disable            - enable or disable drivers")
	fmt.Println("  sync                        - broadcast a sync event")
	fmt.Println("  move <t0> [t1 t2] <time> <key> [abs] [waitsync]")
	fmt.Println("                              - enqueue a stepRequest")
	fmt.Println("  quit/exit/q                 - exit the program")
	fmt.Println()
}

func printStatus(c *client.Client) error {
	status, err := c.GetStatus()
	if err != nil {
		return err
	}
	fmt.Printf("status=%d activeKey=%d timeRemaining=%d read=%d write=%d\n",
		status.StatusCode, status.ActiveKey, status.TimeRemaining, status.ReadPosition, status.WritePosition)
	return nil
}

func printPosition(c *client.Client, axes int) error {
	pos, err := c.GetPosition(axes)
	if err != nil {
		return err
	}
	fmt.Printf("position=%v\n", pos)
	return nil
}

// doMove parses "move <target...> <segmentTime> <segmentKey> [abs] [waitsync]"
// and sends a stepRequest.
func doMove(c *client.Client, args []string, axes int) error {
	if len(args) < axes+2 {
		return fmt.Errorf("usage: move <target x%d> <segmentTime> <segmentKey> [abs] [waitsync]", axes)
	}

	targets := make([]int32, axes)
	for i := 0; i < axes; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", args[i], err)
		}
		targets[i] = int32(v)
	}

	segTime, err := strconv.Atoi(args[axes])
	if err != nil {
		return fmt.Errorf("invalid segment time %q: %w", args[axes], err)
	}
	segKey, err := strconv.Atoi(args[axes+1])
	if err != nil {
		return fmt.Errorf("invalid segment key %q: %w", args[axes+1], err)
	}

	absolute := hasFlag(args[axes+2:], "abs")
	waitForSync := hasFlag(args[axes+2:], "waitsync")

	status, err := c.StepRequest(targets, uint32(segTime), uint8(segKey), absolute, waitForSync)
	if err != nil {
		return err
	}
	fmt.Printf("enqueue result: %d\n", status.StatusCode)
	return nil
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}
