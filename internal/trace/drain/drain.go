package drain

import (
	"bufio"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/arcbook/matchengine/internal/trace"
)

// parkInterval is how long the drain goroutine sleeps after finding the
// ring empty, before polling again (spec §5).
const parkInterval = 100 * time.Microsecond

// flushHighWater is the buffered-writer size at which the drain flushes to
// the sink proactively, rather than waiting for the ring to run dry.
const flushHighWater = 64 * 1024

// shutdownTimeout bounds how long Shutdown waits for the drain goroutine to
// exit on its own before finishing the drain itself (spec §5).
const shutdownTimeout = 5 * time.Second

// Drain consumes a trace.Ring on a dedicated goroutine, reconstructs a
// VirtualBook from what it reads, and writes formatted lines to sink.
// Grounded on the teacher's internal/worker.go WorkerPool, which runs its
// workers under a *tomb.Tomb and exits on Dying(); here there is exactly
// one long-lived consumer instead of a pool.
type Drain struct {
	ring           *trace.Ring
	vb             *VirtualBook
	w              *bufio.Writer
	sink           io.WriteCloser
	snapshotLevels int
	tomb           tomb.Tomb
	sinkFailed     bool
}

// nullSink discards every write. Swapped in for the real sink when the real
// sink's I/O fails, per spec §7: "the drain switches to a null sink and
// logs a single diagnostic; matching continues".
type nullSink struct{}

func (nullSink) Write(p []byte) (int, error) { return len(p), nil }
func (nullSink) Close() error                { return nil }

// New constructs a Drain reading from ring and writing formatted lines to
// sink. sink is closed by Shutdown. The header section is buffered
// immediately, ahead of any event, and reaches the sink with the first flush.
func New(ring *trace.Ring, sink io.WriteCloser, snapshotLevels int) (*Drain, error) {
	w := bufio.NewWriterSize(sink, flushHighWater)
	if err := WriteHeader(w); err != nil {
		return nil, err
	}
	return &Drain{
		ring:           ring,
		vb:             NewVirtualBook(),
		w:              w,
		sink:           sink,
		snapshotLevels: snapshotLevels,
	}, nil
}

// Start launches the drain loop on its own goroutine, supervised by a fresh
// tomb.Tomb.
func (d *Drain) Start() {
	d.tomb.Go(d.run)
}

func (d *Drain) run() error {
	log.Info().Msg("trace drain starting")
	for {
		select {
		case <-d.tomb.Dying():
			d.finalDrain()
			return nil
		default:
		}

		e, ok := d.ring.Poll()
		if !ok {
			if d.w.Buffered() > 0 {
				if err := d.w.Flush(); err != nil {
					d.failSink(err)
				}
			}
			time.Sleep(parkInterval)
			continue
		}
		d.writeEvent(e)
		d.ring.Release(e)

		if d.w.Buffered() >= flushHighWater {
			if err := d.w.Flush(); err != nil {
				d.failSink(err)
			}
		}
	}
}

func (d *Drain) writeEvent(e *trace.TraceEvent) {
	line := formatLine(e, d.vb, d.snapshotLevels)
	if _, err := d.w.WriteString(line); err != nil {
		d.failSink(err)
	}
}

// failSink switches the drain to a discarding null sink after an I/O
// failure, per spec §7: matching (and the drain loop) continues, but no
// further bytes reach the real sink. Idempotent — only the first failure is
// logged and swapped; later calls are no-ops, since by then d.sink is
// already the null sink and writes to it never fail.
func (d *Drain) failSink(err error) {
	if d.sinkFailed {
		return
	}
	d.sinkFailed = true
	log.Error().Err(err).Msg("trace sink write failed, switching to null sink")
	_ = d.sink.Close()
	d.sink = nullSink{}
	d.w = bufio.NewWriter(d.sink)
}

// finalDrain is the best-effort pass that empties whatever is left in the
// ring once the drain has been told to stop. run() calls it on exit, and
// Shutdown calls it again from its own goroutine afterwards; after a clean
// exit of run() that second pass finds the ring already empty.
func (d *Drain) finalDrain() {
	for {
		e, ok := d.ring.Poll()
		if !ok {
			return
		}
		d.writeEvent(e)
		d.ring.Release(e)
	}
}

// Shutdown signals the drain to stop, waits up to shutdownTimeout for it to
// exit, then performs a final best-effort drain from the calling goroutine
// as a safety net, flushes, and closes the sink (spec §5).
func (d *Drain) Shutdown() error {
	d.tomb.Kill(nil)

	select {
	case <-d.tomb.Dead():
	case <-time.After(shutdownTimeout):
		log.Error().Msg("trace drain did not exit within shutdown timeout, draining inline")
	}

	d.finalDrain()
	if err := d.w.Flush(); err != nil {
		d.failSink(err)
	}
	return d.sink.Close()
}
