package intake

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket/pcapgo"
)

// HeaderInfo describes a capture from its global header and first record
type HeaderInfo struct {
	LinkType    string    `json:"link_type"`
	Snaplen     uint32    `json:"snaplen"`
	FirstPacket time.Time `json:"first_packet,omitempty"`
	FirstLength int       `json:"first_length,omitempty"`
	Empty       bool      `json:"empty"`
}

// String renders a one-line description for loading panels and logs
func (h *HeaderInfo) String() string {
	if h.Empty {
		return fmt.Sprintf("%s, snaplen %d, no packets", h.LinkType, h.Snaplen)
	}
	return fmt.Sprintf("%s, snaplen %d, first packet %s (%d bytes)",
		h.LinkType, h.Snaplen, h.FirstPacket.UTC().Format(time.RFC3339), h.FirstLength)
}

// Inspect reads only the pcap global header and the first record. It is
// informational and never changes whether a file may be submitted.
func Inspect(file *SelectedFile) (*HeaderInfo, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer func() { _ = rc.Close() }()

	reader, err := pcapgo.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("not a pcap capture: %w", err)
	}

	info := &HeaderInfo{
		LinkType: reader.LinkType().String(),
		Snaplen:  reader.Snaplen(),
	}

	_, ci, err := reader.ReadPacketData()
	switch {
	case errors.Is(err, io.EOF):
		info.Empty = true
	case err != nil:
		return info, fmt.Errorf("failed to read first packet: %w", err)
	default:
		info.FirstPacket = ci.Timestamp
		info.FirstLength = ci.Length
	}

	return info, nil
}
