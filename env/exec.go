package env

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/ava1ar/zfs-send-receive/logger"
)

const throughputLogInterval = 60 * time.Second

type Executor interface {
	Exec(log logger.Logger, cmd ...string) ([]string, error)
	Execf(log logger.Logger, cmd string, args ...any) ([]string, error)
}

var _ Executor = LocalExecutor{}

var Local = LocalExecutor{}

type LocalExecutor struct{}

func (LocalExecutor) Exec(log logger.Logger, args ...string) ([]string, error) {
	return Exec(log, args...)
}

func (LocalExecutor) Execf(log logger.Logger, s string, args ...any) ([]string, error) {
	return Execf(log, s, args...)
}

func Exec(log logger.Logger, args ...string) ([]string, error) {
	name, args := args[0], args[1:]
	log.Printf("%s %s", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		output := strings.Join(strings.Split(strings.TrimSpace(string(out)), "\n"), "; ")
		return nil, fmt.Errorf("running '%s': %w: %s", name, err, output)
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

func Execf(log logger.Logger, s string, args ...any) ([]string, error) {
	return Exec(log, strings.Fields(fmt.Sprintf(s, args...))...)
}

// Pipe runs `from` and `to` with from's stdout streamed into to's stdin.
// A transfer can run for hours; throughput is logged once a minute while
// the pipe is open. Canceling the context kills both processes. Failure
// of either side fails the pair.
func Pipe(ctx context.Context, log logger.Logger, from, to *exec.Cmd) error {
	log.Printf("%s | %s", strings.Join(from.Args, " "), strings.Join(to.Args, " "))

	stat := NewThroughputStat()
	defer stat.Log(log)

	pr, pw := io.Pipe()
	from.Stdout = pw
	to.Stdin = io.TeeReader(pr, stat)

	var fromErr, toOut bytes.Buffer
	from.Stderr = &fromErr
	to.Stdout = &toOut
	to.Stderr = &toOut

	if err := to.Start(); err != nil {
		return fmt.Errorf("starting '%s': %w", to.Args[0], err)
	}
	if err := from.Start(); err != nil {
		to.Process.Kill()
		pw.CloseWithError(err)
		to.Wait()
		return fmt.Errorf("starting '%s': %w", from.Args[0], err)
	}

	tickerDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(throughputLogInterval)
		defer ticker.Stop()
		for {
			select {
			case <-tickerDone:
				return
			case <-ticker.C:
				stat.Log(log)
			}
		}
	}()
	defer close(tickerDone)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c := make(chan error, 1)
		go func() { c <- from.Wait() }()
		select {
		case err := <-c:
			if err != nil {
				pw.CloseWithError(err)
				return fmt.Errorf("send side: %w: %s", err, strings.TrimSpace(fromErr.String()))
			}
			pw.Close()
			return nil
		case <-gctx.Done():
			from.Process.Kill()
			// Unblock the receive side's stdin copy, or its Wait never
			// returns and the pair leaks.
			pw.CloseWithError(gctx.Err())
			<-c
			return gctx.Err()
		}
	})

	g.Go(func() error {
		c := make(chan error, 1)
		go func() { c <- to.Wait() }()
		select {
		case err := <-c:
			if err != nil {
				pr.CloseWithError(err)
				return fmt.Errorf("receive side: %w: %s", err, strings.TrimSpace(toOut.String()))
			}
			return nil
		case <-gctx.Done():
			to.Process.Kill()
			pr.CloseWithError(gctx.Err())
			<-c
			return gctx.Err()
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	return nil
}

// ThroughputStat accumulates byte counts flowing through the pipe.
type ThroughputStat struct {
	mu          sync.Mutex
	started     time.Time
	total       int64
	window      int64
	windowStart time.Time
}

func NewThroughputStat() *ThroughputStat {
	now := time.Now()
	return &ThroughputStat{started: now, windowStart: now}
}

func (s *ThroughputStat) Write(bs []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total += int64(len(bs))
	s.window += int64(len(bs))
	return len(bs), nil
}

// Log reports total and per-second throughput, then resets the current
// window.
func (s *ThroughputStat) Log(log logger.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	log.Printf("transferred %s (%s/sec overall, %s/sec current)",
		humanize.Bytes(uint64(s.total)),
		rate(s.total, now.Sub(s.started)),
		rate(s.window, now.Sub(s.windowStart)))
	s.window = 0
	s.windowStart = now
}

func rate(bytes int64, elapsed time.Duration) string {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return humanize.Bytes(uint64(bytes))
	}
	return humanize.Bytes(uint64(float64(bytes) / seconds))
}
