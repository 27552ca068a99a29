package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/revoverflow/walker/pkg/types"
)

// pcapng section header block type.
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// PcapEnumerator yields the application-layer payload of every packet in a
// pcap or pcapng capture. Packets without a payload are skipped.
type PcapEnumerator struct {
	path string
}

// NewPcapEnumerator creates an enumerator over a capture file.
func NewPcapEnumerator(path string) *PcapEnumerator {
	return &PcapEnumerator{path: path}
}

type packetReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Enumerate decodes the capture and invokes callback per payload, in
// capture order.
func (e *PcapEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	f, err := os.Open(e.path)
	if err != nil {
		return inputError(e.path, err)
	}
	defer f.Close()

	reader, err := openCapture(bufio.NewReader(f))
	if err != nil {
		return inputError(e.path, err)
	}
	return emitPackets(ctx, e.path, reader, callback)
}

// emitPackets invokes callback for every packet payload read from reader.
func emitPackets(ctx context.Context, path string, reader packetReader, callback Callback) error {
	src := gopacket.NewPacketSource(reader, reader.LinkType())

	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		packet, err := src.NextPacket()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return inputError(path, fmt.Errorf("packet %d: %w", index+1, err))
		}
		index++

		app := packet.ApplicationLayer()
		if app == nil || len(app.Payload()) == 0 {
			continue
		}
		payload := app.Payload()

		prov := types.PacketProvenance{
			CapturePath: path,
			Index:       index,
			Timestamp:   packet.Metadata().Timestamp,
		}
		if err := callback(payload, types.ComputeBufferID(payload), prov); err != nil {
			return err
		}
	}
}

// openCapture sniffs the leading magic to pick the pcap or pcapng reader.
func openCapture(br *bufio.Reader) (packetReader, error) {
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if bytes.Equal(magic, pcapngMagic) {
		r, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to open pcapng: %w", err)
		}
		return r, nil
	}
	r, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap: %w", err)
	}
	return r, nil
}

func isCapture(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".pcapng", ".cap":
		return true
	}
	return false
}
