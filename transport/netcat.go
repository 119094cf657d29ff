package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ava1ar/zfs-send-receive/env"
	"github.com/ava1ar/zfs-send-receive/logger"
)

const readyToken = "zfs-send-receive-listener-up"

// Netcat starts a backgrounded listener on the destination that feeds a
// fixed port into the receive invocation, then connects out from the
// sender. The remote shell echoes a token once the listener command is
// dispatched; netcat itself offers no bound-and-ready signal (probing the
// port would consume its only accept), so the settle delay still covers
// the window between dispatch and bind.
type Netcat struct {
	Host           string
	Port           int
	SettleDelay    time.Duration
	ConnectTimeout time.Duration
}

func (t *Netcat) Name() string {
	return "nc"
}

func (t *Netcat) Run(ctx context.Context, log logger.Logger, spec Spec) error {
	remote := fmt.Sprintf("echo %s && nc -l -p %d | %s",
		readyToken, t.Port, strings.Join(spec.Recv, " "))
	listener := exec.Command("ssh", t.Host, remote)

	stdout, err := listener.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: opening listener output: %w", ErrTransfer, err)
	}
	var listenerErr bytes.Buffer
	listener.Stderr = &listenerErr

	log.Printf("starting listener on %s:%d", t.Host, t.Port)
	if err := listener.Start(); err != nil {
		return fmt.Errorf("%w: starting listener: %w", ErrTransfer, err)
	}

	scanner := bufio.NewScanner(stdout)
	if err := awaitReady(scanner, t.ConnectTimeout); err != nil {
		listener.Process.Kill()
		listener.Wait()
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	// The receive side keeps writing (verbose progress lines) for the
	// whole transfer; left unread, a full pipe buffer would stall it.
	go drainListener(log, scanner)
	time.Sleep(t.SettleDelay)

	send := exec.Command(spec.Send[0], spec.Send[1:]...)
	dial := exec.Command("nc",
		"-w", fmt.Sprintf("%d", seconds(t.ConnectTimeout)),
		t.Host, fmt.Sprintf("%d", t.Port))
	if err := env.Pipe(ctx, log, send, dial); err != nil {
		listener.Process.Kill()
		listener.Wait()
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	if err := listener.Wait(); err != nil {
		return fmt.Errorf("%w: receive side: %w: %s",
			ErrTransfer, err, strings.TrimSpace(listenerErr.String()))
	}
	return nil
}

// awaitReady blocks until the listener's shell echoes the ready token.
// The scanner is handed back to the caller once the token arrives, so
// output buffered past the token line is not lost.
func awaitReady(scanner *bufio.Scanner, timeout time.Duration) error {
	ready := make(chan error, 1)
	go func() {
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == readyToken {
				ready <- nil
				return
			}
		}
		if err := scanner.Err(); err != nil {
			ready <- fmt.Errorf("reading listener output: %w", err)
			return
		}
		ready <- fmt.Errorf("listener exited before signaling readiness")
	}()

	select {
	case err := <-ready:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("listener not ready after %s", timeout)
	}
}

// drainListener consumes the listener's remaining output for the life
// of the transfer, surfacing it in the run log.
func drainListener(log logger.Logger, scanner *bufio.Scanner) {
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			log.Printf("listener: %s", line)
		}
	}
}

func seconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
