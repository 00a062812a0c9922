package jpegquality

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// JPEG markers relevant to quality estimation.
const (
	markerSOI = 0xD8 // Start of Image
	markerEOI = 0xD9 // End of Image
	markerSOS = 0xDA // Start of Scan
	markerDQT = 0xDB // Define Quantization Table
)

// quantTable is one dequantization table from a DQT segment, always stored
// as 64 natural-order values regardless of the encoded precision.
type quantTable struct {
	ID     int
	Values [64]uint16
}

// readQuantTables scans the JPEG marker stream up to the first scan and
// collects every embedded quantization table. A file without a valid SOI
// marker is rejected.
func readQuantTables(path string) ([]quantTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JPEG: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	b1, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	b2, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if b1 != 0xFF || b2 != markerSOI {
		return nil, fmt.Errorf("not a valid JPEG file")
	}

	var tables []quantTable
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return tables, nil
			}
			return nil, err
		}
		if b != 0xFF {
			continue
		}

		marker, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}

		switch marker {
		case markerSOI, markerEOI:
			continue
		case markerSOS:
			// Entropy-coded data follows, all tables are already defined.
			return tables, nil
		case markerDQT:
			segment, err := readSegment(reader)
			if err != nil {
				return nil, err
			}
			tables = append(tables, parseDQT(segment)...)
		default:
			if marker >= 0xD0 && marker <= 0xD7 {
				continue // restart markers carry no payload
			}
			if _, err := readSegment(reader); err != nil {
				return nil, err
			}
		}
	}
}

func readSegment(reader *bufio.Reader) ([]byte, error) {
	lengthBytes := make([]byte, 2)
	if _, err := io.ReadFull(reader, lengthBytes); err != nil {
		return nil, err
	}
	length := int(lengthBytes[0])<<8 | int(lengthBytes[1])
	if length < 2 {
		return nil, fmt.Errorf("invalid segment length %d", length)
	}

	data := make([]byte, length-2)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, err
	}
	return data, nil
}

// parseDQT decodes the tables in one DQT payload. Each table starts with a
// precision/ID byte: high nibble 0 means 8-bit entries, 1 means 16-bit.
func parseDQT(data []byte) []quantTable {
	var tables []quantTable
	for len(data) > 0 {
		precision := int(data[0] >> 4)
		id := int(data[0] & 0x0F)
		data = data[1:]

		var table quantTable
		table.ID = id
		if precision == 0 {
			if len(data) < 64 {
				break
			}
			for i := 0; i < 64; i++ {
				table.Values[i] = uint16(data[i])
			}
			data = data[64:]
		} else {
			if len(data) < 128 {
				break
			}
			for i := 0; i < 64; i++ {
				table.Values[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
			}
			data = data[128:]
		}
		tables = append(tables, table)
	}
	return tables
}

// qualityFromTable buckets the mean quantization step of the first table
// into an approximate encoder quality. Small steps mean light quantization.
func qualityFromTable(table quantTable) int {
	sum := 0.0
	for _, v := range table.Values {
		sum += float64(v)
	}
	avg := sum / 64

	switch {
	case avg < 10:
		return 95
	case avg < 20:
		return 85
	case avg < 40:
		return 75
	case avg < 60:
		return 60
	default:
		return 50
	}
}
