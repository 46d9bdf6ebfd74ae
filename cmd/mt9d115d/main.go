// Command mt9d115d drives an MT9D115 image sensor and accepts mode and
// effect changes over MQTT.
//
// Hardware Setup:
//
//	Sensor     Raspberry Pi
//	GND        GND
//	VDD        1.8V / 2.8V (board regulators)
//	SCL        GPIO3 (I2C1 SCL)
//	SDA        GPIO2 (I2C1 SDA)
//	STANDBY    GPIO17 (optional, -standby)
//
// The register tables come from a JSON file, see package regtable.
//
// Set a mode once and exit:
//
//	mt9d115d -tables board.json -mode 640x480
//
// Serve requests until interrupted:
//
//	mt9d115d -tables board.json -broker tcp://localhost:1883 -prefix camera/front
//
// Output goes to the system log under the daemon facility; LOG_LEVEL
// selects DEBUG, INFO, WARNING or ERROR as the lowest priority logged.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mt9d115"
	"periph.io/x/devices/v3/mt9d115/mqttctl"
	"periph.io/x/devices/v3/mt9d115/regtable"
	"periph.io/x/host/v3"
)

var (
	i2cBus     = flag.String("i2c", "", "I²C bus name (empty for default)")
	addr       = flag.Uint("addr", uint(mt9d115.I2CAddr), "I²C address of the sensor")
	i2cHz      = flag.Int("hz", 0, "I²C frequency in Hz (0 leaves the bus as configured)")
	standby    = flag.String("standby", "", "STANDBY pin name (empty when not wired)")
	tablesPath = flag.String("tables", "", "Register table file (JSON)")
	strictInit = flag.Bool("strict-init", false, "Fail when the sensor does not settle after init")
	mode       = flag.String("mode", "", "Mode to set on start, as WxH")
	broker     = flag.String("broker", "", "MQTT broker URL (empty: exit after -mode)")
	clientID   = flag.String("client-id", "mt9d115d", "MQTT client ID")
	prefix     = flag.String("prefix", "mt9d115", "MQTT topic prefix")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		errorLogger.Print(err)
		os.Exit(1)
	}
}

func run() error {
	if *tablesPath == "" {
		return errors.New("-tables is required")
	}
	if *broker == "" && *mode == "" {
		return errors.New("nothing to do: set -mode or -broker")
	}

	tables, err := regtable.LoadFile(*tablesPath)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	b, err := i2creg.Open(*i2cBus)
	if err != nil {
		return fmt.Errorf("failed to open I²C bus: %w", err)
	}
	defer b.Close()

	a, err := parseAddr(*addr)
	if err != nil {
		return err
	}
	opts := &mt9d115.Opts{
		Addr:       a,
		Speed:      physic.Frequency(*i2cHz) * physic.Hertz,
		StrictInit: *strictInit,
		Logger:     infoLogger,
	}
	if *standby != "" {
		p := gpioreg.ByName(*standby)
		if p == nil {
			return fmt.Errorf("GPIO pin %s not found", *standby)
		}
		opts.Standby = p
	}

	dev, err := mt9d115.NewI2C(b, tables, opts)
	if err != nil {
		return err
	}
	defer dev.Halt()

	s, err := dev.Open()
	if err != nil {
		return err
	}
	infoLogger.Printf("sensor ready: %v", dev)

	if *mode != "" {
		var w, h int
		if _, err := fmt.Sscanf(*mode, "%dx%d", &w, &h); err != nil {
			return fmt.Errorf("bad -mode %q, want WxH: %w", *mode, err)
		}
		start := time.Now()
		if err := s.SetMode(w, h); err != nil {
			return err
		}
		infoLogger.Printf("mode %dx%d set in %v", w, h, time.Since(start).Round(time.Millisecond))
	}

	if *broker == "" {
		return s.Close()
	}
	return serve(s)
}

// parseAddr rejects addresses that do not fit in 7 bits.
func parseAddr(v uint) (uint16, error) {
	if v > 0x7F {
		return 0, fmt.Errorf("-addr %#x is not a 7-bit I²C address", v)
	}
	return uint16(v), nil
}

func serve(s *mt9d115.Session) error {
	var srv *mqttctl.Server

	o := mqtt.NewClientOptions().AddBroker(*broker).SetClientID(*clientID)
	o.SetKeepAlive(10 * time.Second)
	o.SetPingTimeout(5 * time.Second)
	o.SetAutoReconnect(true)
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		warnLogger.Printf("connection lost: %v", err)
	})
	// Subscriptions do not survive a clean-session reconnect.
	o.SetOnConnectHandler(func(mqtt.Client) {
		if err := srv.Start(); err != nil {
			errorLogger.Print(err)
		}
	})

	c := mqtt.NewClient(o)
	srv = mqttctl.New(c, s, *prefix, infoLogger)
	if t := c.Connect(); t.Wait() && t.Error() != nil {
		return fmt.Errorf("failed to connect to %s: %w", *broker, t.Error())
	}
	debugLogger.Printf("connected to %s as %s", *broker, *clientID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	infoLogger.Printf("got %v, shutting down", <-sig)

	if err := srv.Stop(); err != nil {
		warnLogger.Print(err)
	}
	c.Disconnect(250)
	return s.Close()
}
