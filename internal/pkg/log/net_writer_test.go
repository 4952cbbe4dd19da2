package log

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func (m *mockConn) Read(b []byte) (n int, err error) {
	return 0, nil
}

func (m *mockConn) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) LocalAddr() net.Addr {
	return nil
}

func (m *mockConn) RemoteAddr() net.Addr {
	return nil
}

func (m *mockConn) SetDeadline(t time.Time) error {
	return nil
}

func (m *mockConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (m *mockConn) joined() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Join(m.writes, nil)
}

func (m *mockConn) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

func TestNetWriterFlushesOnBatchSize(t *testing.T) {
	conn := &mockConn{}
	w := NewNetWriter(conn, WithBatchSize(2), WithBatchTimeout(60))
	defer w.Close()

	w.Write([]byte("a"))
	assert.Equal(t, 0, conn.count())
	w.Write([]byte("b"))
	assert.Equal(t, 1, conn.count())
	assert.Equal(t, "ab", string(conn.joined()))
}

func TestNetWriterFlushesOnBatchBytes(t *testing.T) {
	conn := &mockConn{}
	w := NewNetWriter(conn, WithBatchBytes(8), WithBatchTimeout(60))
	defer w.Close()

	w.Write([]byte("test1"))
	assert.Equal(t, 0, conn.count())
	w.Write(make([]byte, 8))
	assert.Equal(t, 1, conn.count())
}

func TestNetWriterFlushesOnTimer(t *testing.T) {
	conn := &mockConn{}
	w := NewNetWriter(conn, WithBatchTimeout(1))
	defer w.Close()

	w.Write([]byte("test2"))
	assert.Eventually(t, func() bool {
		return string(conn.joined()) == "test2"
	}, 3*time.Second, 50*time.Millisecond)
}

func TestNetWriterCloseFlushes(t *testing.T) {
	conn := &mockConn{}
	w := NewNetWriter(conn, WithBatchTimeout(60))
	w.Write([]byte("pending"))
	assert.NoError(t, w.Close())
	assert.Equal(t, "pending", string(conn.joined()))
	assert.True(t, conn.closed)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("DEBUG").String())
	assert.Equal(t, "info", ParseLevel("").String())
	assert.Equal(t, "error", ParseLevel(" error ").String())
}
