// Package zlac drives ZLAC8015 hub-motor servo controllers over an RS485
// Modbus RTU line.
package zlac

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// DefaultTimeout bounds a single bus transaction.
const DefaultTimeout = 100 * time.Millisecond

var (
	// ErrNotConnected is returned by motor operations before Begin.
	ErrNotConnected = errors.New("zlac: motor not connected")
	// ErrChecksum is returned when a response fails its CRC check.
	ErrChecksum = errors.New("zlac: crc check error")
	// ErrBaudMismatch is returned when a port is opened twice with different baud rates.
	ErrBaudMismatch = errors.New("zlac: cannot share a port with different baud rates")
)

// Bus is one Modbus RTU line. Every controller on the line shares it; the
// slave address is selected per transaction.
type Bus struct {
	mu       sync.Mutex
	client   modbus.Client
	setSlave func(id byte)
	closer   io.Closer

	port     string
	baudRate int
	refs     int
}

// NewBus wraps an existing Modbus client. setSlave is called with the
// target address before every transaction.
func NewBus(client modbus.Client, setSlave func(id byte)) *Bus {
	return &Bus{client: client, setSlave: setSlave}
}

func openRTU(port string, baudRate int, timeout time.Duration) (*Bus, error) {
	handler := modbus.NewRTUClientHandler(port)
	handler.BaudRate = baudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.Timeout = timeout
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return &Bus{
		client:   modbus.NewClient(handler),
		setSlave: func(id byte) { handler.SlaveId = id },
		closer:   handler,
	}, nil
}

func (b *Bus) writeRegister(addr byte, reg, value uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setSlave(addr)
	_, err := b.client.WriteSingleRegister(reg, value)
	return classify(err)
}

func (b *Bus) readRegisters(addr byte, reg, quantity uint16) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setSlave(addr)
	data, err := b.client.ReadHoldingRegisters(reg, quantity)
	if err != nil {
		return nil, classify(err)
	}
	if len(data) != int(quantity)*2 {
		return nil, fmt.Errorf("zlac: short response: got %d bytes, want %d", len(data), quantity*2)
	}
	return data, nil
}

// Close closes the underlying serial port.
func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// classify maps the modbus client's CRC failure to ErrChecksum.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "crc") {
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	return err
}

// Pool hands out one shared Bus per serial port.
type Pool struct {
	mu    sync.Mutex
	buses map[string]*Bus
	open  func(port string, baudRate int) (*Bus, error)
}

// NewPool returns a pool that opens RTU lines with the given transaction timeout.
func NewPool(timeout time.Duration) *Pool {
	return &Pool{
		buses: make(map[string]*Bus),
		open: func(port string, baudRate int) (*Bus, error) {
			return openRTU(port, baudRate, timeout)
		},
	}
}

// DefaultPool is used by motors created with NewMotor.
var DefaultPool = NewPool(DefaultTimeout)

// Acquire returns the bus for port, opening it on first use.
func (p *Pool) Acquire(port string, baudRate int) (*Bus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b, ok := p.buses[port]; ok {
		if b.baudRate != baudRate {
			return nil, fmt.Errorf("%w: %s is open at %d baud", ErrBaudMismatch, port, b.baudRate)
		}
		b.refs++
		return b, nil
	}

	b, err := p.open(port, baudRate)
	if err != nil {
		return nil, err
	}
	b.port = port
	b.baudRate = baudRate
	b.refs = 1
	p.buses[port] = b
	return b, nil
}

// Release drops one reference to b and closes it when none remain.
func (p *Pool) Release(b *Bus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	b.refs--
	if b.refs > 0 {
		return nil
	}
	delete(p.buses, b.port)
	return b.Close()
}
