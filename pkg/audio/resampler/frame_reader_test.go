package resampler

import (
	"bytes"
	"io"
	"testing"
)

// chunkedReader returns at most chunkSize bytes per Read.
type chunkedReader struct {
	data      []byte
	pos       int
	chunkSize int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := min(r.pos+r.chunkSize, len(r.data), r.pos+len(p))
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	if r.pos >= len(r.data) {
		return n, io.EOF
	}
	return n, nil
}

func TestFrameReader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		frame   int
		bufSize int
		wantN   int
		wantErr error
	}{
		{"exact multiple", []byte{1, 2, 3, 4, 5, 6, 7, 8}, 4, 8, 8, nil},
		{"buffer truncated to frames", []byte{1, 2, 3, 4, 5, 6, 7, 8}, 4, 6, 4, nil},
		{"short buffer", []byte{1, 2, 3, 4}, 4, 2, 0, io.ErrShortBuffer},
		{"empty", nil, 4, 8, 0, io.EOF},
		{"mono frames", []byte{1, 2, 3, 4, 5, 6}, 2, 6, 6, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFrameReader(bytes.NewReader(tt.data), tt.frame)
			n, err := r.Read(make([]byte, tt.bufSize))
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Errorf("n = %d, want %d", n, tt.wantN)
			}
		})
	}
}

func TestFrameReaderTruncatedTail(t *testing.T) {
	r := newFrameReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}), 4)
	buf := make([]byte, 8)

	n, err := r.Read(buf)
	if err != nil || n != 4 || !bytes.Equal(buf[:n], []byte{1, 2, 3, 4}) {
		t.Fatalf("first Read = %d, %v, %v", n, err, buf[:n])
	}
	n, err = r.Read(buf)
	if err != io.ErrUnexpectedEOF || n != 2 {
		t.Fatalf("second Read = %d, %v; want 2, ErrUnexpectedEOF", n, err)
	}
}

func TestFrameReaderHoldsSplitFrame(t *testing.T) {
	src := &chunkedReader{data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, chunkSize: 5}
	r := newFrameReader(src, 4)
	buf := make([]byte, 8)

	n, err := r.Read(buf)
	if err != nil || !bytes.Equal(buf[:n], []byte{1, 2, 3, 4}) {
		t.Fatalf("first Read = %v, %v", buf[:n], err)
	}
	n, err = r.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], []byte{5, 6, 7, 8}) {
		t.Fatalf("second Read = %v", buf[:n])
	}
}
