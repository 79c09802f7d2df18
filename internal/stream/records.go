package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/GeoNet/kit/seis/ms"
)

// RecordLength is the usual miniSEED record length.
const RecordLength = 512

// data starts on a 64 byte boundary after the fixed header and a single blockette 1000.
const dataOffset = ms.RecordHeaderSize + ms.BlocketteHeaderSize + ms.Blockette1000Size + 8

// Records reads fixed length miniSEED records of size bytes from r, calling fn with each raw
// record.  The slice passed to fn is reused.  A trailing short record is an error.
func Records(r io.Reader, size int, fn func([]byte) error) error {
	if size < ms.RecordHeaderSize {
		return fmt.Errorf("invalid record length %d", size)
	}

	record := make([]byte, size)

	for n := 1; ; n++ {
		// a non nil error can be the end of the Reader (EOF),
		// a short record or some other error.
		_, err := io.ReadFull(r, record)
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("record %d: %w", n, err)
		}

		if err := fn(record); err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
	}
}

// ReadRecords is Records with each record decoded to a Packet.
func ReadRecords(r io.Reader, size int, fn func(Packet) error) error {
	return Records(r, size, func(record []byte) error {
		p, err := Decode(record)
		if err != nil {
			return err
		}

		return fn(p)
	})
}

// Encode packs p into big endian IEEE double miniSEED records of size bytes.
// size must be a power of two and the sampling rate a whole number of samples per second.
func Encode(p Packet, size int) ([][]byte, error) {
	exp := int(math.Round(math.Log2(float64(size))))
	if size < 128 || 1<<exp != size {
		return nil, fmt.Errorf("invalid record length %d: must be a power of two from 128", size)
	}

	if p.SampleRate < 1 || p.SampleRate > math.MaxInt16 || p.SampleRate != math.Trunc(p.SampleRate) {
		return nil, fmt.Errorf("unable to encode sampling rate %g", p.SampleRate)
	}

	parts := strings.Split(p.Source, "_")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid source %q: expected NET_STA_LOC_CHA", p.Source)
	}

	perRecord := (size - dataOffset) / 8

	var records [][]byte
	for i, seq := 0, 1; i < len(p.Samples); i, seq = i+perRecord, seq+1 {
		j := i + perRecord
		if j > len(p.Samples) {
			j = len(p.Samples)
		}

		hdr := ms.RecordHeader{
			DataQualityIndicator:         'D',
			ReservedByte:                 ' ',
			NumberOfSamples:              uint16(j - i),
			SampleRateFactor:             int16(p.SampleRate),
			SampleRateMultiplier:         1,
			NumberOfBlockettesThatFollow: 1,
			BeginningOfData:              uint16(dataOffset),
			FirstBlockette:               uint16(ms.RecordHeaderSize),
		}

		hdr.SetSeqNumber(seq % 1000000)
		hdr.SetNetwork(parts[0])
		hdr.SetStation(parts[1])
		hdr.SetLocation(parts[2])
		hdr.SetChannel(parts[3])
		hdr.SetStartTime(p.Start.Add(time.Duration(float64(i) * float64(time.Second) / p.SampleRate)))

		b := make([]byte, size)

		copy(b, ms.EncodeRecordHeader(hdr))
		copy(b[ms.RecordHeaderSize:], ms.EncodeBlocketteHeader(ms.BlocketteHeader{BlocketteType: 1000}))
		copy(b[ms.RecordHeaderSize+ms.BlocketteHeaderSize:], ms.EncodeBlockette1000(ms.Blockette1000{
			Encoding:     uint8(ms.EncodingIEEEDouble),
			WordOrder:    uint8(ms.BigEndian),
			RecordLength: uint8(exp),
		}))

		for k, v := range p.Samples[i:j] {
			binary.BigEndian.PutUint64(b[dataOffset+8*k:], math.Float64bits(v))
		}

		records = append(records, b)
	}

	return records, nil
}
