package console

import (
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/hashicorp/yamux"
	"github.com/pkg/errors"
)

type TriggerRequest struct {
	Name string
}

type TriggerResponse struct {
	Name  string
	Value bool
}

type ListRequest struct{}

type ListResponse struct {
	Flags map[string]bool
}

// DebugService exposes Flags as the "Debug" rpc service.
type DebugService struct {
	flags *Flags
}

func (s *DebugService) Trigger(req *TriggerRequest, rep *TriggerResponse) error {
	v, err := s.flags.Trigger(req.Name)
	if err != nil {
		return err
	}
	rep.Name, rep.Value = req.Name, v
	return nil
}

func (s *DebugService) List(req *ListRequest, rep *ListResponse) error {
	rep.Flags = make(map[string]bool)
	for _, n := range s.flags.Names() {
		rep.Flags[n] = s.flags.Get(n)
	}
	return nil
}

// Server accepts tcp connections, runs a yamux session on each and serves
// jsonrpc on every stream the client opens.
type Server struct {
	*rpc.Server
	l  net.Listener
	wg sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]bool
}

func Listen(addr string, flags *Flags) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "console listen")
	}
	s := &Server{
		Server: rpc.NewServer(),
		l:      l,
		conns:  make(map[net.Conn]bool),
	}
	if err := s.RegisterName("Debug", &DebugService{flags: flags}); err != nil {
		l.Close()
		return nil, errors.Wrap(err, "register debug service")
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.l.Addr()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.l.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = true
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
	log.Printf("console: %s connected", conn.RemoteAddr())

	ysess, err := yamux.Server(conn, nil)
	if err != nil {
		log.Print(err)
		return
	}
	defer ysess.Close()
	for {
		stream, err := ysess.Accept()
		if err != nil {
			break
		}
		go s.ServeCodec(jsonrpc.NewServerCodec(stream))
	}
	log.Printf("console: %s closed connection", conn.RemoteAddr())
}

// Close stops accepting and drops every open session.
func (s *Server) Close() error {
	err := s.l.Close()
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

// Client talks to a console Server over one yamux stream.
type Client struct {
	*rpc.Client
	sess *yamux.Session
}

func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "console dial")
	}
	sess, err := yamux.Client(conn, nil)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "console session")
	}
	stream, err := sess.Open()
	if err != nil {
		sess.Close()
		return nil, errors.Wrap(err, "console stream")
	}
	return &Client{
		Client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(stream)),
		sess:   sess,
	}, nil
}

func (c *Client) Trigger(name string) (bool, error) {
	rep := new(TriggerResponse)
	if err := c.Call("Debug.Trigger", &TriggerRequest{Name: name}, rep); err != nil {
		return false, err
	}
	return rep.Value, nil
}

func (c *Client) List() (map[string]bool, error) {
	rep := new(ListResponse)
	if err := c.Call("Debug.List", &ListRequest{}, rep); err != nil {
		return nil, err
	}
	return rep.Flags, nil
}

func (c *Client) Close() error {
	c.Client.Close()
	return c.sess.Close()
}
