package remote

import (
	"context"
	"net"

	"github.com/hypebeast/go-osc/osc"
	"github.com/pkg/errors"

	"go-mixsurface/debug"
	"go-mixsurface/mixer"
)

// QueueSize bounds the commands waiting for the next tick
const QueueSize = 64

// Server listens for OSC mixer messages and queues the valid ones
type Server struct {
	addr  string
	root  string
	queue chan Command
}

func NewServer(addr, root string) *Server {
	return &Server{
		addr:  addr,
		root:  root,
		queue: make(chan Command, QueueSize),
	}
}

// Handle parses one message and queues it. Malformed messages are dropped.
func (s *Server) Handle(msg *osc.Message) {
	cmd, err := Parse(s.root, msg.Address, msg.Arguments)
	if err != nil {
		debug.Warn("osc", "dropped: %v", err)
		return
	}
	s.Post(cmd)
}

// Post queues cmd without blocking
func (s *Server) Post(cmd Command) bool {
	select {
	case s.queue <- cmd:
		return true
	default:
		debug.Warn("osc", "queue full, dropped %v%d", cmd.Kind, cmd.Index)
		return false
	}
}

// Drain applies every queued command and returns how many ran
func (s *Server) Drain(c *mixer.Controller) int {
	n := 0
	for {
		select {
		case cmd := <-s.queue:
			Apply(c, cmd)
			n++
		default:
			return n
		}
	}
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "osc listen %s", s.addr)
	}

	d := osc.NewStandardDispatcher()
	if err := d.AddMsgHandler("*", s.Handle); err != nil {
		conn.Close()
		return errors.Wrap(err, "osc dispatcher")
	}
	srv := &osc.Server{Addr: s.addr, Dispatcher: d}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	debug.Log("osc", "listening on %s root %s", conn.LocalAddr(), s.root)
	err = srv.Serve(conn)
	if ctx.Err() != nil {
		return nil
	}
	return errors.Wrap(err, "osc serve")
}
