// Package serve exposes the scan core over newline-delimited JSON on a pair
// of streams, normally stdin and stdout.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/revoverflow/walker/pkg/scanner"
	"github.com/revoverflow/walker/pkg/structure"
	"github.com/revoverflow/walker/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server manages the streaming scanner
type Server struct {
	core    *scanner.Core
	encoder *json.Encoder
	decoder *json.Decoder
	logger  logrus.FieldLogger

	// cores built from per-request descriptors, keyed by descriptor text
	cores map[string]*scanner.Core
	// template for per-request cores; Structures and Store are ignored
	coreConfig scanner.CoreConfig
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs request failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCoreConfig sets the byte order, workers, prefilter, diagnostics and
// logger used for cores built from per-request descriptors.
func WithCoreConfig(cfg scanner.CoreConfig) Option {
	return func(s *Server) {
		s.coreConfig = cfg
	}
}

// NewServer creates a new streaming server
func NewServer(core *scanner.Core, in io.Reader, out io.Writer, opts ...Option) *Server {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Server{
		core:    core,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
		logger:  discard,
		cores:   make(map[string]*scanner.Core),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server main loop. It returns when the input ends, a close
// request arrives or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.closeCores()

	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(req Request) bool {
	switch req.Type {
	case "scan":
		s.handleScan(req.Payload)
	case "scan_batch":
		s.handleScanBatch(req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	ids := make([]string, 0, len(s.core.Structures()))
	for _, st := range s.core.Structures() {
		ids = append(ids, st.ID)
	}
	s.send("ready", ReadyData{Version: Version, Structures: ids})
}

func (s *Server) handleScan(payload json.RawMessage) {
	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", err.Error())
		return
	}

	core, err := s.coreFor(p.Structure)
	if err != nil {
		s.sendError("scan", err.Error())
		return
	}

	result, err := core.Scan(p.Content, p.Source)
	if err != nil {
		s.sendError("scan", err.Error())
		return
	}
	s.send("scan", result)
}

func (s *Server) handleScanBatch(payload json.RawMessage) {
	var p ScanBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}

	core, err := s.coreFor(p.Structure)
	if err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}

	result, err := core.ScanBatch(p.Items)
	if err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}
	s.send("scan_batch", result)
}

// coreFor returns the default core, or one built from descriptor with the
// server's core configuration.
func (s *Server) coreFor(descriptor string) (*scanner.Core, error) {
	if descriptor == "" {
		return s.core, nil
	}
	if core, ok := s.cores[descriptor]; ok {
		return core, nil
	}

	loader := structure.NewLoader(structure.WithDiagnostics(s.coreConfig.Diagnostics))
	var structures []*types.Structure
	var err error
	if descriptor == structure.BuiltinPrefix {
		structures, err = loader.LoadBuiltin()
	} else {
		structures, err = loader.Load([]byte(descriptor), "inline")
	}
	if err != nil {
		return nil, err
	}

	cfg := s.coreConfig
	cfg.Structures = structures
	cfg.Store = nil
	core, err := scanner.NewCoreWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	s.cores[descriptor] = core
	return core, nil
}

func (s *Server) closeCores() {
	for _, core := range s.cores {
		core.Close()
	}
	s.cores = make(map[string]*scanner.Core)
}

func (s *Server) send(respType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(respType, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    respType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.logger.WithField("request", reqType).Warn(msg)
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
