// parmon polls the PAR value of a quantum sensor, logs each reading and
// optionally publishes it to an MQTT broker.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pico-cs/go-quantum/internal/publish"
	"github.com/pico-cs/go-quantum/logger"
	"github.com/pico-cs/go-quantum/quantum"
)

var (
	portName = os.Getenv("PARMON_PORT")
	tcpAddr  string
	mqttURL  = os.Getenv("PARMON_MQTT_URL")
	interval = time.Second
	level    = "info"
)

func init() {
	flag.StringVar(&portName, "port", portName, "Serial port of the sensor (default detected).")
	flag.StringVar(&tcpAddr, "tcp", tcpAddr, "host:port of a serial-to-network bridge, used instead of -port.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL, e.g. mqtt://localhost:1883/greenhouse/.")
	flag.DurationVar(&interval, "interval", interval, "Wait time between two readings.")
	flag.StringVar(&level, "level", level, "Log level (debug, info, warn, error).")
}

func main() {
	flag.Parse()

	log := logger.GetLogger()
	if lv, ok := logger.ParseLevel(level); ok {
		log.SetLevel(lv)
	} else {
		log.Warn("invalid log level - using info", "level", level)
	}

	endpoint, opts := resolveEndpoint(log)
	driver, err := quantum.New(endpoint, append(opts, quantum.WithLogger(log))...)
	if err != nil {
		log.Fatal("create driver", "error", err)
	}
	defer driver.Close()

	var pub *publish.Publisher
	if mqttURL != "" {
		if pub, err = publish.New(mqttURL, sensorID(driver, endpoint)); err != nil {
			log.Fatal("create publisher", "error", err)
		}
		defer pub.Close()
		log.Info("publishing readings", "topic", pub.Topic())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, driver, pub, log)
}

func resolveEndpoint(log logger.Logger) (string, []quantum.Option) {
	if tcpAddr != "" {
		return tcpAddr, []quantum.Option{quantum.WithDialer(quantum.TCPDialer)}
	}
	if portName != "" {
		return portName, nil
	}
	name, err := quantum.SerialDefaultPortName()
	if err != nil {
		log.Fatal("detect serial port", "error", err)
	}
	return name, nil
}

// sensorID returns the sensor serial number and the endpoint base name if the
// serial number cannot be read.
func sensorID(driver *quantum.Driver, endpoint string) string {
	if sn, err := driver.SerialNumber(); err == nil {
		return strconv.FormatUint(uint64(sn), 10)
	}
	return filepath.Base(endpoint)
}

// run reads until ctx is done. A failed reading skips the sample.
func run(ctx context.Context, driver *quantum.Driver, pub *publish.Publisher, log logger.Logger) {
	var seq uint64
	for {
		par, err := driver.Reading()
		if err != nil {
			log.Warn("skip sample", "error", err)
		} else {
			seq++
			log.Info("reading", "seq", seq, "par", par)
			if pub != nil {
				if err := pub.Publish(publish.Sample{Seq: seq, Time: time.Now(), Micromoles: par}); err != nil {
					log.Warn("publish failed", "error", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			m := driver.Metrics()
			log.Info("stopped", "readings", m.ReadingCount.Load(), "failed", m.ReadingErrCount.Load())
			return
		case <-time.After(interval):
		}
	}
}
