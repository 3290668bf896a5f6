package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/fatih/color"

	"github.com/dot5enko/i2c-kv-store/store"
	"github.com/dot5enko/i2c-kv-store/transport"
)

func main() {

	bus := transport.NewSimulated(32*1024, transport.FRAM)

	s, err := store.New(store.Config{
		MemoryType:      transport.FRAM,
		I2CAddress:      0x50,
		TotalMemoryBits: 32 * 1024 * 8,
		BlockSize:       128,
		MaxKeyLength:    8,
		MaxValueLength:  120,
		SDAPin:          -1,
		SCLPin:          -1,
		Bus:             bus,
	}, slog.Default())

	if err != nil {
		log.Fatalf("configuring store: %v", err)
	}

	if err := s.Begin(); err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer s.End()

	mustPut := func(label string, err error) {
		if err != nil {
			color.Red("put %s failed: %v", label, err)
		}
	}

	mustPut("sensorID", s.PutInt("sensorID", 42))
	mustPut("tempOff", s.PutFloat("tempOff", 1.5))
	mustPut("devName", s.PutString("devName", "ESP32C3"))
	mustPut("debug", s.PutBool("debug", true))
	mustPut("uptime", s.PutLong64("uptime", 1234567890))

	color.Green("sensorID = %d", s.GetInt("sensorID", -1))
	color.Green("tempOff  = %v", s.GetFloat("tempOff", 0))
	color.Green("devName  = %s", s.GetString("devName", ""))
	color.Green("debug    = %v", s.GetBool("debug", false))
	color.Green("uptime   = %d", s.GetLong64("uptime", 0))

	s.Remove("tempOff")
	fmt.Println("after remove, tempOff =", s.GetFloat("tempOff", 99.9))

	fmt.Println(s.Dump())
}
