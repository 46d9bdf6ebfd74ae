// Package mt9d115 controls an Aptina MT9D115 image sensor via I²C.
//
// The MT9D115 is a 2MP system-on-chip sensor with an on-chip MCU that runs
// the image pipeline. The host programs it with register tables and watches
// the MCU's sequencer to know when a change has taken effect.
//
// # Sensor Characteristics
//
// - 16-bit register addresses and values, big-endian on the wire
// - Four output modes: 1600×1200 and 1280×720 (capture), 800×600 and 640×480 (preview)
// - Color effects, white balance, brightness and scene presets
// - Sequencer state readable through the MCU variable window (0x098C/0x0990)
//
// # Hardware Connection
//
// Connect the MT9D115 module to your system via I²C:
//
//	Sensor Pin → System Pin
//	GND        → GND
//	VDD/VDDIO  → module regulators
//	SCL        → I²C Clock (SCL)
//	SDA        → I²C Data (SDA)
//	SADDR      → GND for address 0x3C
//	STANDBY    → Optional: GPIO for standby control
//
// # Basic Usage
//
// Example of opening the sensor and selecting a mode:
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/devices/v3/mt9d115"
//		"periph.io/x/devices/v3/mt9d115/regtable"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open I²C bus
//		bus, _ := i2creg.Open("")
//
//		// Load the board tables
//		tables, _ := regtable.LoadFile("mt9d115.json")
//
//		// Create device
//		dev, _ := mt9d115.NewI2C(bus, tables, nil)
//		defer dev.Halt()
//
//		// Power up and start a session
//		s, _ := dev.Open()
//
//		// The first mode change runs the init table
//		s.SetMode(640, 480)
//
//		// Switch to sepia
//		s.SetEffect(mt9d115.ItemEffect, mt9d115.EffectSepia)
//	}
//
// # Register Tables
//
// The driver ships no register values. Tables are sequences of
// (address, value) writes with two markers: an entry at address
// regtable.Wait pauses for Val milliseconds and an entry at address
// regtable.End stops the table. They are usually loaded from JSON, see
// package regtable.
//
// NewI2C checks that every table the driver can select is present, so a
// missing table is reported before the sensor is touched.
//
// # Modes
//
// SetMode writes the mode table and then polls the sequencer until it
// reports the expected state: 3 (preview) for 800×600 and 640×480, 7
// (capture) for 1600×1200 and 1280×720. Going from any mode back to a preview
// mode also runs the back-to-preview table.
//
// The first SetMode of a session runs the init table beforehand. By default a
// sensor that does not reach preview state after init is only logged; set
// Opts.StrictInit to fail instead:
//
//	dev, _ := mt9d115.NewI2C(bus, tables, &mt9d115.Opts{
//		StrictInit: true,
//	})
//
// # Effects
//
// SetEffect selects one table per item and value. Values without a table of
// their own fall back to the item default:
//
//	s.SetEffect(mt9d115.ItemWhiteBalance, mt9d115.WBCloudy)     // sunlight table
//	s.SetEffect(mt9d115.ItemBrightness, mt9d115.BrightnessP1)   // +1 step
//	s.SetEffect(mt9d115.ItemScene, 42)                          // auto scene
//
// # Bus Errors
//
// Register writes are retried (Opts.MaxRetries, 3 by default) with a pause of
// Opts.RetryDelay between attempts; each failed attempt is logged. Reads are
// not retried. Status polling tolerates failed reads until it runs out of
// attempts.
//
// # Power Control
//
// If the STANDBY pin is wired to a GPIO, provide it in Opts. It is pulled low
// by Open and high by Close. Boards with switchable regulators can add
// PowerOn and PowerOff hooks:
//
//	standby := gpioreg.ByName("GPIO17")
//
//	dev, _ := mt9d115.NewI2C(bus, tables, &mt9d115.Opts{
//		Standby:  standby,
//		PowerOff: func() error { return regulator.Out(gpio.Low) },
//	})
//
// The sensor forgets its configuration when powered down, so every session
// starts over with the init table.
//
// # TinyGo
//
// FromTinyGo wraps a tinygo.org/x/drivers I2C bus so the same driver runs on
// microcontrollers.
//
// # Datasheet
//
// For register descriptions and the MCU variable map, see the MT9D115
// developer guide from onsemi.
package mt9d115
