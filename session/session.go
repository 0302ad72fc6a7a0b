// Package session owns the per-session handshake state machine, traffic
// keys, and anti-replay windows (component B, plus the session-scoped slice
// of A and C). The Manager in manager.go owns the table of sessions.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nyxmesh/nyx-core/crypto/hybrid"
	"github.com/nyxmesh/nyx-core/internal/bin"
	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/nyxerrors"
	"github.com/nyxmesh/nyx-core/replay"
	"github.com/nyxmesh/nyx-core/telemetry"
)

// DefaultMaxRecordBytes bounds a single encrypted record's wire size.
const DefaultMaxRecordBytes = 64 * 1024

// maxRekeyFailures is how many rekey or record-decryption failures a
// session tolerates before it is failed outright. Only a successful Rekey
// resets the count.
const maxRekeyFailures = 3

// Status is an immutable snapshot of a session's externally visible state.
type Status struct {
	ID                uint32
	Role              Role
	State             State
	CreatedAt         time.Time
	LastActivity      time.Time
	HandshakeDuration time.Duration
	BytesTx           uint64
	BytesRx           uint64
	FramesTx          uint64
	FramesRx          uint64
	NegotiatedCaps    CapabilitySet
}

// Session is a single handshake-then-record-stream endpoint. It exclusively
// owns its handshake state, traffic keys, and anti-replay window.
type Session struct {
	id   uint32
	role Role

	mu    sync.Mutex
	state State

	kp *hybrid.KeyPair
	pk hybrid.HybridPublicKey // cached wire-form public key (either role)

	pendingSecret    hybrid.SharedSecret
	pendingSecretSet bool

	keys       trafficKeys
	prevKeys   trafficKeys
	prevValid  bool
	prevExpiry time.Time

	transcript [32]byte
	rekeyEpoch uint64

	txSeq    uint64 // atomic
	rxWindow *replay.Window

	localCaps      CapabilitySet
	negotiatedCaps CapabilitySet

	createdAt         time.Time
	lastActivityUnix  int64 // atomic, unix nanos
	handshakeStarted  time.Time
	handshakeDuration time.Duration

	bytesTx, bytesRx   uint64 // atomic
	framesTx, framesRx uint64 // atomic

	rekeyFailures int

	maxRecordBytes int
	sink           telemetry.Sink
}

func newSession(id uint32, role Role, localCaps CapabilitySet, sink telemetry.Sink) *Session {
	if sink == nil {
		sink = telemetry.Noop
	}
	now := time.Now()
	s := &Session{
		id:             id,
		role:           role,
		state:          Idle,
		localCaps:      localCaps,
		createdAt:      now,
		maxRecordBytes: DefaultMaxRecordBytes,
		sink:           sink,
	}
	s.touch(now)
	return s
}

// NewClientSession constructs a session that will initiate the handshake.
func NewClientSession(id uint32, localCaps CapabilitySet, sink telemetry.Sink) *Session {
	return newSession(id, RoleInitiator, localCaps, sink)
}

// NewServerSession constructs a session that will respond to a peer's hello.
func NewServerSession(id uint32, localCaps CapabilitySet, sink telemetry.Sink) *Session {
	return newSession(id, RoleResponder, localCaps, sink)
}

func (s *Session) touch(t time.Time) { atomic.StoreInt64(&s.lastActivityUnix, t.UnixNano()) }

func (s *Session) lastActivity() time.Time {
	return time.Unix(0, atomic.LoadInt64(&s.lastActivityUnix))
}

// ID returns the session's 32-bit identifier.
func (s *Session) ID() uint32 { return s.id }

func (s *Session) transitionLocked(next State) error {
	if !canTransition(s.state, next) {
		return ErrInvalidTransition
	}
	s.state = next
	return nil
}

func (s *Session) fail(reason nyxerrors.Code, cause error) error {
	s.mu.Lock()
	if s.state != Closed {
		s.state = Failed
	}
	s.mu.Unlock()
	s.sink.SessionFailed(string(reason))
	return nyxerrors.Wrap(nyxerrors.ComponentSession, reason, cause)
}

// InitiateHandshake transitions Idle -> ClientHandshaking and returns the
// wire-form hybrid public key (HybridPublicKeySize bytes).
func (s *Session) InitiateHandshake() ([]byte, error) {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return nil, ErrNotIdle
	}
	kp, pk, err := hybrid.ClientInit()
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail(nyxerrors.CodeCryptoFailure, err)
	}
	s.kp = kp
	s.pk = pk
	s.handshakeStarted = time.Now()
	if err := s.transitionLocked(ClientHandshaking); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	s.touch(time.Now())
	return pk.Bytes(), nil
}

// ProcessPeerHello transitions Idle -> ServerHandshaking: it validates the
// peer's capabilities, performs the responder side of the handshake, and
// returns the wire-form ciphertext (HybridCiphertextSize bytes) to send
// back. Callers then call ConfirmServerHandshake once the response has been
// sent.
func (s *Session) ProcessPeerHello(clientPKBytes []byte, peerRequired, peerOptional CapabilitySet) ([]byte, error) {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return nil, ErrNotIdle
	}
	negotiated, err := negotiateCapabilities(s.localCaps, peerRequired, peerOptional)
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail(nyxerrors.CodeUnsupportedCapability, err)
	}
	clientPK, err := hybrid.ParseHybridPublicKey(clientPKBytes)
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail(nyxerrors.CodeValidation, err)
	}
	ct, secret, err := hybrid.ServerRespond(clientPK)
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail(nyxerrors.CodeCryptoFailure, err)
	}
	s.pk = clientPK
	s.pendingSecret = secret
	s.pendingSecretSet = true
	s.negotiatedCaps = negotiated
	s.transcript = transcriptHash(clientPK.Bytes(), ct.Bytes())
	s.handshakeStarted = time.Now()
	if err := s.transitionLocked(ServerHandshaking); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	s.touch(time.Now())
	return ct.Bytes(), nil
}

// ConfirmServerHandshake transitions ServerHandshaking -> Established,
// installing the traffic keys derived from the pending shared secret.
func (s *Session) ConfirmServerHandshake() error {
	s.mu.Lock()
	if s.state != ServerHandshaking {
		s.mu.Unlock()
		return ErrNotHandshaking
	}
	if !s.pendingSecretSet {
		s.mu.Unlock()
		return s.fail(nyxerrors.CodeCryptoFailure, nil)
	}
	keys, err := deriveTrafficKeys(s.pendingSecret)
	s.pendingSecret.Zero()
	s.pendingSecretSet = false
	if err != nil {
		s.mu.Unlock()
		return s.fail(nyxerrors.CodeCryptoFailure, err)
	}
	s.installKeysLocked(keys)
	if err := s.transitionLocked(Established); err != nil {
		s.mu.Unlock()
		return err
	}
	dur := time.Since(s.handshakeStarted)
	s.handshakeDuration = dur
	s.mu.Unlock()
	s.sink.SessionCreated(s.role.String())
	s.sink.HandshakeCompleted(true, dur)
	s.touch(time.Now())
	return nil
}

// FinalizeHandshake transitions ClientHandshaking -> Established using the
// responder's wire-form ciphertext.
func (s *Session) FinalizeHandshake(ciphertextBytes []byte) error {
	s.mu.Lock()
	if s.state != ClientHandshaking {
		s.mu.Unlock()
		return ErrNotHandshaking
	}
	ct, err := hybrid.ParseHybridCiphertext(ciphertextBytes)
	if err != nil {
		s.mu.Unlock()
		return s.fail(nyxerrors.CodeValidation, err)
	}
	secret, err := hybrid.ClientFinalize(s.kp, ct)
	if err != nil {
		s.mu.Unlock()
		return s.fail(nyxerrors.CodeCryptoFailure, err)
	}
	s.kp.Zero()
	s.kp = nil
	keys, err := deriveTrafficKeys(secret)
	secret.Zero()
	if err != nil {
		s.mu.Unlock()
		return s.fail(nyxerrors.CodeCryptoFailure, err)
	}
	s.transcript = transcriptHash(s.pk.Bytes(), ciphertextBytes)
	s.installKeysLocked(keys)
	if err := s.transitionLocked(Established); err != nil {
		s.mu.Unlock()
		return err
	}
	dur := time.Since(s.handshakeStarted)
	s.handshakeDuration = dur
	s.mu.Unlock()
	s.sink.SessionCreated(s.role.String())
	s.sink.HandshakeCompleted(true, dur)
	s.touch(time.Now())
	return nil
}

// installKeysLocked must be called with s.mu held.
func (s *Session) installKeysLocked(k trafficKeys) {
	s.keys = k
	s.rxWindow = replay.NewWindow(defaults.AntiReplayWindowSize)
}

// sendKeyLocked returns this session's current send key and nonce prefix
// for its role's direction.
func (s *Session) sendKeyLocked() ([32]byte, [4]byte) {
	if s.role == RoleInitiator {
		return s.keys.c2sKey, s.keys.c2sNonce
	}
	return s.keys.s2cKey, s.keys.s2cNonce
}

// recvKeyLocked returns this session's current receive key and nonce
// prefix: the direction the peer sends on.
func (s *Session) recvKeyLocked() ([32]byte, [4]byte) {
	if s.role == RoleInitiator {
		return s.keys.s2cKey, s.keys.s2cNonce
	}
	return s.keys.c2sKey, s.keys.c2sNonce
}

func (s *Session) prevRecvKeyLocked() ([32]byte, [4]byte) {
	if s.role == RoleInitiator {
		return s.prevKeys.s2cKey, s.prevKeys.s2cNonce
	}
	return s.prevKeys.c2sKey, s.prevKeys.c2sNonce
}

// EncryptApplication frames and seals an outbound application payload.
func (s *Session) EncryptApplication(plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	if s.state != Established {
		s.mu.Unlock()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentSession, nyxerrors.CodeNotEstablished, nil)
	}
	key, noncePrefix := s.sendKeyLocked()
	seq := atomic.AddUint64(&s.txSeq, 1)
	maxBytes := s.maxRecordBytes
	s.mu.Unlock()

	frame, err := encryptRecord(key, noncePrefix, RecordFlagApp, seq, plaintext, maxBytes)
	if err != nil {
		return nil, nyxerrors.Wrap(nyxerrors.ComponentSession, nyxerrors.CodeCryptoFailure, err)
	}
	atomic.AddUint64(&s.bytesTx, uint64(len(plaintext)))
	atomic.AddUint64(&s.framesTx, 1)
	s.touch(time.Now())
	return frame, nil
}

// DecryptApplication validates and decrypts an inbound framed record. The
// anti-replay check runs against the frame's wire sequence before any
// decryption is attempted. On a decrypt failure during the post-rekey grace
// window, the previous keys are tried before the operation fails.
func (s *Session) DecryptApplication(frame []byte) ([]byte, error) {
	s.mu.Lock()
	if s.state != Established {
		s.mu.Unlock()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentSession, nyxerrors.CodeNotEstablished, nil)
	}
	recvKey, recvNonce := s.recvKeyLocked()
	maxBytes := s.maxRecordBytes
	window := s.rxWindow
	prevValid := s.prevValid && time.Now().Before(s.prevExpiry)
	var prevKey [32]byte
	var prevNonce [4]byte
	if prevValid {
		prevKey, prevNonce = s.prevRecvKeyLocked()
	}
	s.mu.Unlock()

	if len(frame) < recordHeaderLen {
		return nil, ErrRecordShort
	}
	seq := bin.U64BE(frame[6:14])
	if !window.Check(seq) {
		s.sink.ReplayRejected()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentReplay, nyxerrors.CodeReplayRejected, nil)
	}

	_, _, plain, err := decryptRecord(recvKey, recvNonce, frame, maxBytes)
	if err != nil && prevValid {
		if _, _, plainPrev, prevErr := decryptRecord(prevKey, prevNonce, frame, maxBytes); prevErr == nil {
			s.sink.RekeyGraceUsed()
			atomic.AddUint64(&s.bytesRx, uint64(len(plainPrev)))
			atomic.AddUint64(&s.framesRx, 1)
			s.touch(time.Now())
			return plainPrev, nil
		}
	}
	if err != nil {
		s.recordRekeyOrDecryptFailure()
		return nil, nyxerrors.Wrap(nyxerrors.ComponentSession, nyxerrors.CodeCryptoFailure, err)
	}
	atomic.AddUint64(&s.bytesRx, uint64(len(plain)))
	atomic.AddUint64(&s.framesRx, 1)
	s.touch(time.Now())
	return plain, nil
}

func (s *Session) recordRekeyOrDecryptFailure() {
	s.mu.Lock()
	s.rekeyFailures++
	exceeded := s.rekeyFailures > maxRekeyFailures
	s.mu.Unlock()
	if exceeded {
		_ = s.fail(nyxerrors.CodeRekeyFailed, nil)
	}
}

// Close transitions the session to Closed. From Established it passes
// through Closing; from any other non-Closed state (including a handshake
// that never finished, or Failed) it closes directly, since there is no
// established record stream to drain.
func (s *Session) Close() error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return nil
	case Established:
		if err := s.transitionLocked(Closing); err != nil {
			s.mu.Unlock()
			return err
		}
		if err := s.transitionLocked(Closed); err != nil {
			s.mu.Unlock()
			return err
		}
	default:
		s.state = Closed
	}
	s.keys.zero()
	s.prevKeys.zero()
	s.mu.Unlock()
	s.sink.SessionClosed("closed")
	return nil
}

// Status returns an immutable snapshot of the session's externally visible
// state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ID:                s.id,
		Role:              s.role,
		State:             s.state,
		CreatedAt:         s.createdAt,
		LastActivity:      s.lastActivity(),
		HandshakeDuration: s.handshakeDuration,
		BytesTx:           atomic.LoadUint64(&s.bytesTx),
		BytesRx:           atomic.LoadUint64(&s.bytesRx),
		FramesTx:          atomic.LoadUint64(&s.framesTx),
		FramesRx:          atomic.LoadUint64(&s.framesRx),
		NegotiatedCaps:    s.negotiatedCaps,
	}
}
