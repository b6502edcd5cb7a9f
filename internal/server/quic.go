package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/physics/internal/core/observability/log"
)

const (
	// ALPN protocol negotiated by snapshot viewers.
	ALPN = "physics-snapshots"

	frameHeaderSize = 8
	// MaxFrameSize bounds a single snapshot frame read from a stream.
	MaxFrameSize = 64 << 20
)

// QUICTransport opens one unidirectional-in-practice stream per viewer and
// writes length-prefixed frames on it.
type QUICTransport struct {
	addr      string
	tlsConfig *tls.Config
	hub       *Hub
	logger    log.Log

	mu       sync.Mutex
	listener *quic.Listener
}

var _ Transport = (*QUICTransport)(nil)

func NewQUICTransport(addr string, tlsConfig *tls.Config, hub *Hub, logger log.Log) *QUICTransport {
	return &QUICTransport{addr: addr, tlsConfig: tlsConfig, hub: hub, logger: logger}
}

func (t *QUICTransport) Name() string { return "quic" }

func (t *QUICTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *QUICTransport) Serve(ctx context.Context) error {
	listener, err := quic.ListenAddr(t.addr, t.tlsConfig, &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	})
	if err != nil {
		return errors.Wrapf(err, "listen quic %s", t.addr)
	}
	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()
	defer func() { _ = listener.Close() }()

	t.logger.Info("quic replication listening", log.String("addr", listener.Addr().String()))

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "accept quic connection")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.handleViewer(ctx, conn)
		}()
	}
}

func (t *QUICTransport) handleViewer(ctx context.Context, conn *quic.Conn) {
	viewer := t.hub.Register(conn.RemoteAddr().String())
	logger := t.logger.With(log.String("viewer", viewer.ID.String()))
	logger.Info("viewer connected", log.String("remote", viewer.Remote))

	defer func() {
		t.hub.Unregister(viewer.ID)
		_ = conn.CloseWithError(0, "bye")
		logger.Info("viewer disconnected", log.Uint64("dropped", viewer.Dropped()))
	}()

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		logger.Warn("open stream failed", log.Error(err))
		return
	}
	defer func() { _ = stream.Close() }()

	for {
		select {
		case frame, ok := <-viewer.Frames():
			if !ok {
				return
			}
			if err := WriteFrame(stream, frame); err != nil {
				logger.Debug("viewer write failed", log.Error(err))
				return
			}
		case <-conn.Context().Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

// WriteFrame writes an 8-byte big-endian length header followed by frame.
func WriteFrame(w io.Writer, frame []byte) error {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint64(header, uint64(len(frame)))
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "write frame header")
	}
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "write frame")
	}
	return nil
}

// ReadFrame reads one frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint64(header)
	if size > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", size)
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, errors.Wrap(err, "read frame")
	}
	return frame, nil
}

// LoadTLSConfig loads the key pair, or generates a self-signed certificate
// for localhost when both paths are empty.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" && keyFile == "" {
		return SelfSignedTLSConfig()
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load TLS key pair")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

func SelfSignedTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"physics"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:     []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, errors.Wrap(err, "create certificate")
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "load generated key pair")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}
