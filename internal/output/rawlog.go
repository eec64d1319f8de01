package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"slam-feed-go/internal/types"
)

const rawLogMagic = "SLAMRAW1"

// RawLogWriter appends length-prefixed CBOR records of track results to a
// binary capture file, one file per run.
type RawLogWriter struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func NewRawLogWriter(outputDir string, prefix string) (*RawLogWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.bin", timestamp, prefix))
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriterSize(f, 1024*1024)
	if _, err := w.WriteString(rawLogMagic); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &RawLogWriter{
		f: f,
		w: w,
	}, nil
}

// RecordResult encodes one track result and appends it.
func (r *RawLogWriter) RecordResult(res types.TrackResult) error {
	payload, err := cbor.Marshal(res)
	if err != nil {
		return err
	}
	return r.record(payload)
}

func (r *RawLogWriter) record(payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return fmt.Errorf("raw log writer is closed")
	}
	var header [12]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(time.Now().UnixNano()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := r.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := r.w.Write(payload); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *RawLogWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		_ = r.f.Close()
		r.w = nil
		return err
	}
	err := r.f.Close()
	r.w = nil
	return err
}

// RawRecord is one rawlog record as read back: the wall-clock time the
// record was written and its raw CBOR payload.
type RawRecord struct {
	WallNanos int64
	Payload   []byte
}

// ReadRawLog validates the magic header and reads every record.
func ReadRawLog(r io.Reader) ([]RawRecord, error) {
	header := make([]byte, len(rawLogMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(header) != rawLogMagic {
		return nil, fmt.Errorf("unexpected rawlog magic %q", string(header))
	}
	var records []RawRecord
	for {
		var meta [12]byte
		if _, err := io.ReadFull(r, meta[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return records, nil
			}
			return records, fmt.Errorf("read record header: %w", err)
		}
		size := binary.LittleEndian.Uint32(meta[8:12])
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return records, fmt.Errorf("read record payload: %w", err)
		}
		records = append(records, RawRecord{
			WallNanos: int64(binary.LittleEndian.Uint64(meta[:8])),
			Payload:   payload,
		})
	}
}
