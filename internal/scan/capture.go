package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scagate/scagate/internal/artifact"
)

// Mode selects the capture strategy for a scanner invocation.
type Mode string

const (
	// ModeBuffered blocks until the process exits or the output ceiling is
	// exceeded, then returns a fully materialized buffer.
	ModeBuffered Mode = "buffered"
	// ModeStreaming tees output to observers chunk-by-chunk as it arrives.
	ModeStreaming Mode = "streaming"
)

// DefaultMode returns the capture mode for a platform. Windows runners do not
// stream console output reliably, so they get the buffered strategy.
func DefaultMode(goos string) Mode {
	if goos == "windows" {
		return ModeBuffered
	}
	return ModeStreaming
}

// DefaultBufferLimit is the output-size ceiling for buffered capture.
const DefaultBufferLimit = 10 << 20 // 10 MiB

// Capture holds everything a finished (or failed) invocation produced.
// Combined preserves arrival order across both streams and is final by the
// time Run returns.
type Capture struct {
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	Combined  string        `json:"-"`
	ExitCode  int           `json:"exit_code"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"-"`
}

// Invoker runs the external scanner and captures its output. It never decides
// whether a non-zero exit fails the job; that policy belongs to the caller.
type Invoker struct {
	mode       Mode
	limit      int
	resultPath string
	logger     *slog.Logger

	// Streaming observers receive output chunks as they arrive. Nil
	// observers are skipped.
	ObserverOut io.Writer
	ObserverErr io.Writer
}

// Opts configures an Invoker.
type Opts struct {
	Mode       Mode   // empty means DefaultMode(runtime.GOOS)
	Limit      int    // buffered-mode output ceiling; <=0 means DefaultBufferLimit
	ResultPath string // combined output written here after capture; empty disables
}

// NewInvoker creates an Invoker. A nil logger falls back to slog.Default().
func NewInvoker(opts Opts, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	mode := opts.Mode
	if mode == "" {
		mode = DefaultMode(runtime.GOOS)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	return &Invoker{mode: mode, limit: limit, resultPath: opts.ResultPath, logger: logger}
}

// Run launches the scanner via `sh -c` and captures its output. A non-zero
// exit is not an error: the Capture carries the exit code and whatever the
// process wrote before failing, since a failed scan may still have printed
// the report line. Errors are reserved for launch and pipe failures.
func (inv *Invoker) Run(ctx context.Context, command string) (*Capture, error) {
	start := time.Now()
	inv.logger.Info("invoking scanner", "mode", string(inv.mode), "command", command)

	var capt *Capture
	var err error
	switch inv.mode {
	case ModeBuffered:
		capt, err = inv.runBuffered(ctx, command)
	default:
		capt, err = inv.runStreaming(ctx, command)
	}
	if err != nil {
		return nil, err
	}
	capt.Duration = time.Since(start)

	inv.logger.Info("scanner finished",
		"exit_code", capt.ExitCode,
		"output_bytes", len(capt.Combined),
		"truncated", capt.Truncated,
		"duration", capt.Duration.Round(time.Millisecond))

	inv.writeResultFile(capt)
	return capt, nil
}

// runBuffered blocks until the process exits or the accumulator hits the
// output ceiling. On ceiling hit the caller is unblocked with the truncated
// buffer while the child is reaped in the background.
func (inv *Invoker) runBuffered(ctx context.Context, command string) (*Capture, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	acc := newAccumulator(inv.limit)
	cmd.Stdout = acc.stdoutWriter()
	cmd.Stderr = acc.stderrWriter()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start scanner: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		capt := acc.capture()
		capt.ExitCode = exitCode(err)
		if err != nil && capt.ExitCode < 0 {
			return nil, fmt.Errorf("wait for scanner: %w", err)
		}
		return capt, nil
	case <-acc.limitHit:
		inv.logger.Warn("output ceiling exceeded, returning truncated capture", "limit_bytes", inv.limit)
		// Reap in the background so the child does not become a zombie.
		go func() { <-done }()
		capt := acc.capture()
		capt.ExitCode = -1
		return capt, nil
	}
}

// runStreaming reads each stream in its own goroutine, teeing chunks to the
// observers and appending to the accumulators in arrival order. A single join
// on both readers plus Wait marks completion; nothing mutates the buffers
// after that.
func (inv *Invoker) runStreaming(ctx context.Context, command string) (*Capture, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start scanner: %w", err)
	}

	acc := newAccumulator(0)
	g := new(errgroup.Group)
	g.Go(func() error { return drain(stdout, acc.stdoutWriter(), inv.ObserverOut) })
	g.Go(func() error { return drain(stderr, acc.stderrWriter(), inv.ObserverErr) })

	readErr := g.Wait()
	waitErr := cmd.Wait()

	capt := acc.capture()
	capt.ExitCode = exitCode(waitErr)
	if waitErr != nil && capt.ExitCode < 0 {
		return nil, fmt.Errorf("wait for scanner: %w", waitErr)
	}
	if readErr != nil {
		inv.logger.Warn("stream read ended early", "error", readErr)
	}
	return capt, nil
}

// drain copies r chunk-by-chunk into the accumulator writer and, when set,
// the observer. Observer write failures never interrupt capture.
func drain(r io.Reader, accW io.Writer, observer io.Writer) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			accW.Write(buf[:n])
			if observer != nil {
				_, _ = observer.Write(buf[:n])
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// writeResultFile persists the combined output. Write failures are logged,
// never fatal: extraction and status reporting proceed regardless.
func (inv *Invoker) writeResultFile(capt *Capture) {
	if inv.resultPath == "" {
		return
	}
	if err := artifact.WriteAtomic(inv.resultPath, []byte(capt.Combined)); err != nil {
		inv.logger.Warn("failed to write result file", "path", inv.resultPath, "error", err)
		return
	}
	inv.logger.Debug("wrote result file", "path", inv.resultPath, "bytes", len(capt.Combined))
}

// exitCode maps a Wait error to an exit code: 0 on success, the process's
// code for a normal non-zero exit, -1 for anything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// accumulator keeps one append-only builder per stream plus the combined
// arrival-order view. A single mutex orders appends across streams so the
// combined buffer never interleaves within a chunk.
type accumulator struct {
	mu       sync.Mutex
	stdout   strings.Builder
	stderr   strings.Builder
	combined strings.Builder

	limit     int // 0 disables the ceiling
	truncated bool
	limitHit  chan struct{}
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{limit: limit, limitHit: make(chan struct{})}
}

func (a *accumulator) stdoutWriter() io.Writer { return accWriter{a, &a.stdout} }
func (a *accumulator) stderrWriter() io.Writer { return accWriter{a, &a.stderr} }

type accWriter struct {
	acc    *accumulator
	stream *strings.Builder
}

func (w accWriter) Write(p []byte) (int, error) {
	a := w.acc
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.truncated {
		// Past the ceiling everything is dropped but the copy keeps
		// running so the child never blocks on a full pipe.
		return len(p), nil
	}

	chunk := p
	if a.limit > 0 && a.combined.Len()+len(p) > a.limit {
		chunk = p[:a.limit-a.combined.Len()]
		a.truncated = true
	}
	w.stream.Write(chunk)
	a.combined.Write(chunk)
	if a.truncated {
		close(a.limitHit)
	}
	return len(p), nil
}

func (a *accumulator) capture() *Capture {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &Capture{
		Stdout:    a.stdout.String(),
		Stderr:    a.stderr.String(),
		Combined:  a.combined.String(),
		Truncated: a.truncated,
	}
}
