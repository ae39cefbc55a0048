//go:build linux || darwin

// Command canmonitor dials a SocketCAN interface and logs ENGINE_STATUS
// frames using the generated examples/enginebus accessor bundle.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"dbc-bitgen/examples/enginebus"
	"dbc-bitgen/internal/logx"
)

// frameSource narrows busClient down to the one read method this
// command uses, so run can be tested without a real interface.
type frameSource interface {
	ReadFrameByID(ctx context.Context, id uint32) (can.Frame, error)
}

// busClient owns one SocketCAN connection and serves both directions:
// filtered receive for the monitor, transmit for the injector. A
// single pump goroutine drains the socket so traffic for other
// identifiers is discarded here rather than in every caller's loop.
type busClient struct {
	conn   net.Conn
	recv   *socketcan.Receiver
	tx     *socketcan.Transmitter
	frames chan can.Frame
	errs   chan error
	once   sync.Once
}

func dialBus(ctx context.Context, iface string) (*busClient, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &busClient{
		conn:   conn,
		recv:   socketcan.NewReceiver(conn),
		tx:     socketcan.NewTransmitter(conn),
		frames: make(chan can.Frame),
		errs:   make(chan error, 1),
	}, nil
}

// pump starts the single receive goroutine on first use. It exits when
// the connection closes, reporting the receiver's terminal error.
func (c *busClient) pump() {
	c.once.Do(func() {
		go func() {
			for c.recv.Receive() {
				c.frames <- c.recv.Frame()
			}
			if err := c.recv.Err(); err != nil {
				c.errs <- err
			} else {
				c.errs <- fmt.Errorf("socketcan receive closed")
			}
		}()
	})
}

// ReadFrameByID blocks until a frame carrying id arrives, dropping
// everything else.
func (c *busClient) ReadFrameByID(ctx context.Context, id uint32) (can.Frame, error) {
	c.pump()
	for {
		select {
		case <-ctx.Done():
			return can.Frame{}, ctx.Err()
		case err := <-c.errs:
			return can.Frame{}, err
		case f := <-c.frames:
			if f.ID != id {
				continue
			}
			return f, nil
		}
	}
}

func (c *busClient) TransmitFrame(ctx context.Context, f can.Frame) error {
	return c.tx.TransmitFrame(ctx, f)
}

func (c *busClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func main() {
	var (
		iface    = flag.String("iface", "vcan0", "SocketCAN interface name")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error|critical")
		logPath  = flag.String("logfile", "canmonitor.log", "Path to the log file")
		inject   = flag.Bool("inject", false, "Transmit a synthetic ENGINE_STATUS frame every second instead of monitoring")
	)
	flag.Parse()

	log, err := logx.NewFileLogger(*logPath, logx.ParseLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logPath + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, err := dialBus(ctx, *iface)
	if err != nil {
		log.Critical("dial %s: %v", *iface, err)
		os.Exit(1)
	}
	defer bus.Close()

	if *inject {
		if err := injectLoop(ctx, bus, log.With("inject")); err != nil && err != context.Canceled {
			log.Critical("inject failed: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Info("listening on %s for message id 0x%X (%s)", *iface, enginebus.EngineStatus_ID, "ENGINE_STATUS")

	if err := run(ctx, bus, log.With("monitor")); err != nil && err != context.Canceled {
		log.Critical("monitor failed: %v", err)
		os.Exit(1)
	}
}

// injectLoop transmits a synthetic ENGINE_STATUS frame once a second, a
// bench-test substitute for a real vehicle bus.
func injectLoop(ctx context.Context, bus *busClient, log *logx.Logger) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	msg := enginebus.NewEngineStatus()
	msg.Rpm = 800
	msg.CoolantTemp = 75
	msg.CheckEngine = false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := bus.TransmitFrame(ctx, msg.Frame()); err != nil {
				return fmt.Errorf("transmit: %w", err)
			}
			log.Debug("injected ENGINE_STATUS rpm=%.2f", msg.Rpm)
		}
	}
}

func run(ctx context.Context, src frameSource, log *logx.Logger) error {
	msg := enginebus.NewEngineStatus()
	for {
		f, err := src.ReadFrameByID(ctx, enginebus.EngineStatus_ID)
		if err != nil {
			return err
		}
		if err := msg.UnmarshalFrame(f); err != nil {
			log.Warn("decode frame 0x%X: %v", f.ID, err)
			continue
		}
		log.Info("ENGINE_STATUS rpm=%.2f coolant=%.1f check_engine=%v", msg.Rpm, msg.CoolantTemp, msg.CheckEngine)
	}
}
