package midi

import (
	"context"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// PortTimeout bounds a port scan. CoreMIDI can hang until coreaudiod is restarted.
const PortTimeout = 3 * time.Second

// Ports lists MIDI input and output ports
func Ports(ctx context.Context) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	ctx, cancel := context.WithTimeout(ctx, PortTimeout)
	defer cancel()

	select {
	case r := <-ch:
		return r.inPorts, r.outPorts, nil
	case <-ctx.Done():
		return nil, nil, fault.Wrap(ctx.Err(),
			fmsg.WithDesc("scan midi ports", "MIDI system is not responding (try: sudo killall coreaudiod midiserver)"))
	}
}

// FindOut returns the first output port whose name contains name. An empty
// name picks the first port.
func FindOut(ctx context.Context, name string) (drivers.Out, error) {
	_, outs, err := Ports(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := findPort(outs, name); ok {
		return p, nil
	}
	return nil, portNotFound("output", name)
}

// FindIn is FindOut for input ports
func FindIn(ctx context.Context, name string) (drivers.In, error) {
	ins, _, err := Ports(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := findPort(ins, name); ok {
		return p, nil
	}
	return nil, portNotFound("input", name)
}

func findPort[P interface{ String() string }](ports []P, name string) (P, bool) {
	for _, p := range ports {
		if matchPort(p.String(), name) {
			return p, true
		}
	}
	var zero P
	return zero, false
}

// matchPort is a case-insensitive substring match
func matchPort(portName, want string) bool {
	return strings.Contains(strings.ToLower(portName), strings.ToLower(strings.TrimSpace(want)))
}

func portNotFound(kind, name string) error {
	desc := "No MIDI " + kind + " port found"
	if name != "" {
		desc = "No MIDI " + kind + " port matches \"" + name + "\""
	}
	return fault.Wrap(fault.New("midi "+kind+" port not found: "+name),
		fmsg.WithDesc("find port", desc),
		ftag.With(ftag.NotFound))
}

// CloseDriver releases the MIDI driver; call once on exit after ports are closed
func CloseDriver() {
	gomidi.CloseDriver()
}
