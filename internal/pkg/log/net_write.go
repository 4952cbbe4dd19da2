package log

import (
	"io"
	"log"
	"net"
	"sync"
	"time"
)

var _ io.Writer = (*NetWriter)(nil)
var _ io.Closer = (*NetWriter)(nil)

const (
	defaultBatchSize    = 100
	defaultBatchBytes   = 1024 * 1024
	defaultBatchTimeout = 1
)

type Option func(*NetWriter)

func WithBatchSize(size int) Option {
	if size <= 0 {
		size = defaultBatchSize
	}
	return func(w *NetWriter) {
		w.batchSize = size
	}
}

func WithBatchTimeout(timeout int) Option {
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}
	return func(w *NetWriter) {
		w.batchTimeout = timeout
	}
}

func WithBatchBytes(bytes int) Option {
	if bytes <= 0 {
		bytes = defaultBatchBytes
	}
	return func(w *NetWriter) {
		w.batchBytes = bytes
	}
}

// NetWriter batches log lines and ships them to a remote collector
// (logstash or similar) either when a batch fills up or on a timer.
type NetWriter struct {
	buffer [][]byte
	bytes  int

	batchSize    int
	batchBytes   int
	batchTimeout int

	m    sync.Mutex
	done chan struct{}
	once sync.Once

	conn net.Conn
}

func NewNetWriter(conn net.Conn, opts ...Option) *NetWriter {
	w := &NetWriter{
		buffer:       make([][]byte, 0, defaultBatchSize),
		batchSize:    defaultBatchSize,
		batchBytes:   defaultBatchBytes,
		batchTimeout: defaultBatchTimeout,
		done:         make(chan struct{}),
		conn:         conn,
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w
}

func (w *NetWriter) loop() {
	defer func() {
		if e := recover(); e != nil {
			log.Printf("net writer panic: %v", e)
		}
	}()
	t := time.NewTicker(time.Duration(w.batchTimeout) * time.Second)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			w.m.Lock()
			b := w.drain()
			w.m.Unlock()
			w.send(b)
		}
	}
}

// drain must be called with w.m held.
func (w *NetWriter) drain() []byte {
	if len(w.buffer) == 0 {
		return nil
	}
	out := make([]byte, 0, w.bytes)
	for _, b := range w.buffer {
		out = append(out, b...)
	}
	w.bytes = 0
	w.buffer = make([][]byte, 0, w.batchSize)
	return out
}

func (w *NetWriter) send(b []byte) {
	if len(b) == 0 {
		return
	}
	if _, err := w.conn.Write(b); err != nil {
		log.Printf("write log to network error: %v", err)
	}
}

func (w *NetWriter) Write(p []byte) (n int, err error) {
	// zap reuses its buffer after Write returns
	cp := make([]byte, len(p))
	copy(cp, p)

	w.m.Lock()
	w.buffer = append(w.buffer, cp)
	w.bytes += len(cp)
	var flush []byte
	if len(w.buffer) >= w.batchSize || w.bytes >= w.batchBytes {
		flush = w.drain()
	}
	w.m.Unlock()

	w.send(flush)
	return len(p), nil
}

func (w *NetWriter) Close() error {
	w.once.Do(func() { close(w.done) })
	w.m.Lock()
	b := w.drain()
	w.m.Unlock()
	w.send(b)
	return w.conn.Close()
}
