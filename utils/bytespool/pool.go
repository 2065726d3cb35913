package bytespool

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// CopyBufferSize matches the largest payload an SFTP packet carries.
const CopyBufferSize = 32 * 1024

var gp = sync.Pool{
	New: func() any {
		bs := make([]byte, CopyBufferSize)
		return &bs
	},
}

// GetBuffer returns a growable buffer, give it back with Put.
func GetBuffer() *bytebufferpool.ByteBuffer {
	return bytebufferpool.Get()
}

// GetBytes returns a CopyBufferSize long slice, give it back with Put.
func GetBytes() []byte {
	return *gp.Get().(*[]byte)
}

// Put recycles what GetBuffer or GetBytes returned,
// anything else is dropped.
func Put(b any) {
	switch t := b.(type) {
	case []byte:
		if cap(t) < CopyBufferSize {
			return
		}

		t = t[:CopyBufferSize]
		gp.Put(&t)
	case *bytebufferpool.ByteBuffer:
		bytebufferpool.Put(t)
	}
}
