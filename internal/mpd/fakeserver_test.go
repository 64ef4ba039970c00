package mpd

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// fakeServer speaks enough of the MPD protocol for the session tests.
type fakeServer struct {
	t        *testing.T
	listener net.Listener

	mu      sync.Mutex
	status  map[string]string
	current map[string]string
	raw     string // verbatim currentsong reply, overrides current

	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &fakeServer{
		t:        t,
		listener: l,
		status:   map[string]string{"state": "stop", "volume": "50"},
		current:  map[string]string{},
		changes:  make(chan string),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.close)
	return s
}

func (s *fakeServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *fakeServer) SetStatus(attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = attrs
}

func (s *fakeServer) SetCurrent(attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = attrs
}

// SetCurrentLines sets the currentsong reply verbatim, for tags that repeat.
func (s *fakeServer) SetCurrentLines(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = strings.Join(lines, "\n") + "\nOK\n"
}

// Change wakes the idling connection with the given subsystem.
func (s *fakeServer) Change(subsystem string) {
	s.changes <- subsystem
}

func (s *fakeServer) close() {
	close(s.done)
	_ = s.listener.Close()
	s.wg.Wait()
}

func (s *fakeServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *fakeServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-s.done:
				return
			}
		}
	}()

	w := bufio.NewWriter(conn)
	reply := func(format string, args ...any) {
		fmt.Fprintf(w, format, args...)
		_ = w.Flush()
	}

	reply("OK MPD 0.23.5\n")

	for {
		var line string
		select {
		case <-s.done:
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		cmd := strings.Fields(line)
		if len(cmd) == 0 {
			continue
		}

		switch cmd[0] {
		case "idle":
			select {
			case <-s.done:
				return
			case name := <-s.changes:
				reply("changed: %s\nOK\n", name)
			case _, ok := <-lines:
				// noidle
				if !ok {
					return
				}
				reply("OK\n")
			}
		case "status":
			s.mu.Lock()
			reply("%s", formatAttrs(s.status))
			s.mu.Unlock()
		case "currentsong":
			s.mu.Lock()
			if s.raw != "" {
				reply("%s", s.raw)
			} else {
				reply("%s", formatAttrs(s.current))
			}
			s.mu.Unlock()
		case "close":
			return
		default:
			reply("OK\n")
		}
	}
}

func formatAttrs(attrs map[string]string) string {
	var sb strings.Builder
	for k, v := range attrs {
		fmt.Fprintf(&sb, "%s: %s\n", k, v)
	}
	sb.WriteString("OK\n")
	return sb.String()
}
